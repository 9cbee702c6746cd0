// Package scan narrows discovered apps and models down to the pairs a run
// will process.
package scan

import "github.com/ogulcanaydogan/autoapi/pkg/model"

// SelectApps applies the include, exclude and single-app rules and returns
// the retained apps in input order. Exclude always wins over include.
// Duplicate labels are kept as separate entries.
func SelectApps(apps []model.AppDescriptor, cfg model.FilterConfig) []model.AppDescriptor {
	include := toSet(cfg.Include)
	exclude := toSet(cfg.Exclude)

	out := make([]model.AppDescriptor, 0, len(apps))
	for _, app := range apps {
		if len(include) > 0 {
			if _, ok := include[app.Label]; !ok {
				continue
			}
		}
		if _, ok := exclude[app.Label]; ok {
			continue
		}
		if cfg.SingleApp != "" && app.Label != cfg.SingleApp {
			continue
		}
		out = append(out, app)
	}
	return out
}

// SelectModels returns the models of app that pass the single-model rule.
func SelectModels(app model.AppDescriptor, cfg model.FilterConfig) []model.ModelDescriptor {
	if cfg.SingleModel == "" {
		return app.Models
	}

	var out []model.ModelDescriptor
	for _, m := range app.Models {
		if m.Name == cfg.SingleModel {
			out = append(out, m)
		}
	}
	return out
}

// Filter returns the ordered (app, model) pairs selected by cfg: app order
// first, then model order within each app. No match yields an empty result.
func Filter(apps []model.AppDescriptor, cfg model.FilterConfig) []model.Pair {
	var pairs []model.Pair
	for _, app := range SelectApps(apps, cfg) {
		for _, m := range SelectModels(app, cfg) {
			pairs = append(pairs, model.Pair{App: app, Model: m})
		}
	}
	return pairs
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}
