package engine

// CloneProps deep-copies an engine property map. Engine payloads are plain
// JSON shapes (maps, slices, scalars), so a structural copy is sufficient.
func CloneProps(props map[string]any) map[string]any {
	if props == nil {
		return nil
	}
	return cloneValue(props).(map[string]any)
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = cloneValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = cloneValue(val)
		}
		return out
	default:
		return v
	}
}

// ObjectID reads the engine id out of a property map's qInfo block.
func ObjectID(props map[string]any) string {
	info, _ := props["qInfo"].(map[string]any)
	id, _ := info["qId"].(string)
	return id
}

// SetObjectID rewrites the qInfo id, creating the block when absent.
func SetObjectID(props map[string]any, id string) {
	info, _ := props["qInfo"].(map[string]any)
	if info == nil {
		info = map[string]any{}
		props["qInfo"] = info
	}
	info["qId"] = id
}

// CollectStateNames walks a property shape and gathers every alternate-state
// reference. The default state "$" and the empty string are skipped; they
// always exist in a document.
func CollectStateNames(v any) []string {
	seen := map[string]bool{}
	collectStates(v, seen)
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	return out
}

func collectStates(v any, seen map[string]bool) {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			if k == "qStateName" || k == "stateName" {
				if name, ok := val.(string); ok && name != "" && name != "$" {
					seen[name] = true
				}
				continue
			}
			collectStates(val, seen)
		}
	case []any:
		for _, val := range t {
			collectStates(val, seen)
		}
	}
}
