package client

import (
	"fmt"

	"auren-studio/internal/domain"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Draft is a client-local, possibly edited copy of a component's editable
// fields. A draft belongs to exactly one Session and is discarded when the
// session ends.
type Draft domain.ComponentPayload

var validate = validator.New()

// NewDraft returns a draft with the defaults a fresh designer form shows.
func NewDraft() *Draft {
	return &Draft{
		Type:     domain.ComponentTypeAPI,
		Status:   domain.ComponentStatusActive,
		Config:   map[string]interface{}{},
		Metadata: map[string]interface{}{},
	}
}

// DraftFromComponent seeds a draft from an entity's current fields. The
// draft is fully detached: editing it never reaches back into the entity.
func DraftFromComponent(c *domain.Component) *Draft {
	return (*Draft)(domain.PayloadFromComponent(c)).Clone()
}

func (d *Draft) payload() *domain.ComponentPayload {
	return (*domain.ComponentPayload)(d)
}

// Clone returns an independent copy of the draft.
func (d *Draft) Clone() *Draft {
	out := *d
	if d.Config != nil {
		out.Config = make(map[string]interface{}, len(d.Config))
		for k, v := range d.Config {
			out.Config[k] = v
		}
	}
	if d.Metadata != nil {
		out.Metadata = make(map[string]interface{}, len(d.Metadata))
		for k, v := range d.Metadata {
			out.Metadata[k] = v
		}
	}
	if d.Fields != nil {
		out.Fields = append([]domain.FieldDef(nil), d.Fields...)
	}
	return &out
}

// Validate checks the draft locally. It fails with *ValidationError before
// any network traffic; an invalid draft never produces a request.
func (d *Draft) Validate() error {
	if err := validate.Struct(d.payload()); err != nil {
		return &ValidationError{Err: err}
	}
	return nil
}

// ToYAML renders the draft for the human editing surface.
func (d *Draft) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to render draft as YAML: %w", err)
	}
	return data, nil
}

// ParseDraftYAML parses and validates an edited YAML document back into a
// draft. Both parse and schema failures are local *ValidationErrors.
func ParseDraftYAML(data []byte) (*Draft, error) {
	var d Draft
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, &ValidationError{Err: fmt.Errorf("invalid YAML: %w", err)}
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}
