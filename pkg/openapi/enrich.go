package openapi

// OperationID returns the identifier for an action of a route group. Values
// pass through unchanged, so callers must keep action names distinct.
func OperationID(routeGroup, actionName string) string {
	return routeGroup + "_" + actionName
}

// Enrich returns a copy of op with the operation ID assigned and missing
// parameter descriptions filled from model metadata. Existing descriptions
// are never replaced. Enrich is idempotent.
func Enrich(op OperationDescriptor) OperationDescriptor {
	out := op
	out.OperationID = OperationID(op.RouteGroup, op.ActionName)

	if op.Parameters != nil {
		out.Parameters = make([]ParameterDescriptor, len(op.Parameters))

		for i, p := range op.Parameters {
			if p.Description == "" {
				p.Description = modelDescription(op.Metadata, p)
			}

			out.Parameters[i] = p
		}
	}

	return out
}

func modelDescription(metadata []ParameterMetadata, p ParameterDescriptor) string {
	if p.ModelDescription != "" {
		return p.ModelDescription
	}

	for _, m := range metadata {
		if m.Name == p.Name {
			return m.Description
		}
	}

	return ""
}
