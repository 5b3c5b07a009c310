package registry

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/easel-ai/easel/pkg/provider"
)

// ValidateParams checks a submitted generation request against the
// model's declared contract. Every violation is collected; the caller
// gets one aggregated error (ozzo's validation.Errors) or nil. Nothing
// is partially applied.
func ValidateParams(m *ModelConfig, n int, size string, params map[string]string, mode provider.Mode) error {
	errs := validation.Errors{}

	errs["n"] = validation.Validate(n,
		validation.Required,
		validation.Min(1),
		validation.Max(m.MaxImages).Error(fmt.Sprintf("must be no greater than %d for %s", m.MaxImages, m.ID)),
	)

	if size != "" {
		errs["size"] = validation.Validate(size, validation.In(toAny(m.SupportedSizes)...).
			Error(fmt.Sprintf("unsupported size for %s", m.ID)))
	}

	if mode == provider.ModeEdit && !m.HasCapability(CapEdit) {
		errs["source_images"] = fmt.Errorf("%s does not support image editing", m.ID)
	}

	declared := make(map[string]Parameter, len(m.Parameters))
	for _, p := range m.Parameters {
		declared[p.Name] = p
	}

	for name, value := range params {
		p, ok := declared[name]
		if !ok {
			errs[name] = fmt.Errorf("unknown parameter for %s", m.ID)
			continue
		}
		if p.EnabledFor != "" && !enabledFor(p.EnabledFor, mode) {
			errs[name] = fmt.Errorf("parameter only applies to %s operations", p.EnabledFor)
			continue
		}
		if len(p.Options) > 0 {
			errs[name] = validation.Validate(value, validation.In(toAny(p.Options)...).
				Error("value not in declared option set"))
		}
	}

	return errs.Filter()
}

func enabledFor(cap Capability, mode provider.Mode) bool {
	switch cap {
	case CapEdit, CapMask:
		return mode == provider.ModeEdit
	case CapGenerate:
		return mode == provider.ModeGenerate
	default:
		return true
	}
}

func toAny(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
