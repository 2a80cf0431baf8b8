// Package handler defines the contract documentation handlers implement, the
// registry the host uses to pick a handler by name, and the pieces every
// handler shares: option merging, the collection error, and the base template
// filters.
//
// A host drives a handler in three steps:
//
//	h, _ := handler.DefaultRegistry.New("shell", "material", "", "mkdocs.yml", nil)
//	_ = h.UpdateEnv(goldmark.New(), nil)         // once per build
//	data, err := h.Collect(ctx, "scripts/build.sh", opts)
//	html, err := h.Render(ctx, data, opts)
//
// Collect reports unresolvable identifiers with *CollectionError so the host can
// log a broken reference and keep building.
package handler
