// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "github.com/invopop/jsonschema"

// SchemaID identifies the content document schema.
const SchemaID = "https://jatiwelfare.org/schema/site-content.json"

// Schema describes the persisted content document as JSON Schema, with
// every definition inlined.
func Schema() *jsonschema.Schema {
	r := jsonschema.Reflector{Anonymous: true, DoNotReference: true}
	s := r.Reflect(&SiteContent{})
	s.ID = SchemaID
	s.Title = "Site content"
	s.Description = "Content document of the charity site, stored as one JSON value."
	return s
}
