package importer

// publishMetaFields are server-side publish bookkeeping fields that must not
// travel into a destination document; the engine refuses or corrupts writes
// carrying foreign publish state.
var publishMetaFields = []string{
	"createdDate",
	"modifiedDate",
	"published",
	"publishTime",
	"approved",
	"owner",
	"sourceObject",
	"draftObject",
	"privileges",
}

// StripPublishMeta removes publish metadata from a property payload, both at
// the top level and inside the qMeta block, then drops qMeta entirely (it is
// engine-maintained stats, never authored). Idempotent: absent fields are
// tolerated and nothing is re-added.
func StripPublishMeta(props map[string]any) map[string]any {
	for _, f := range publishMetaFields {
		delete(props, f)
	}
	delete(props, "qMeta")
	return props
}
