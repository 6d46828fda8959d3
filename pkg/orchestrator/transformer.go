package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/goliatone/go-kctheme/pkg/kccontext"
)

// Transformer mutates a decoded kcContext before it is rendered.
// Implementations can override messages, patch profile attributes, or perform
// arbitrary rewrites.
type Transformer interface {
	Transform(ctx context.Context, kc kccontext.KcContext) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, kc kccontext.KcContext) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, kc kccontext.KcContext) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, kc)
}

// JSONPresetTransformer applies declarative overrides loaded from a JSON file.
// The document shape supports message overrides, theme properties and
// per-attribute patches of the user profile:
//
//	{
//	  "messages": {"loginAccountTitle": "Welcome back"},
//	  "properties": {"kcFormClass": "acme-form"},
//	  "attributes": {
//	    "email": {"displayName": "${workEmail}", "helperTextAfter": "Use your work address"}
//	  }
//	}
type JSONPresetTransformer struct {
	document jsonTransformDocument
}

type jsonTransformDocument struct {
	Messages   map[string]string             `json:"messages"`
	Properties map[string]string             `json:"properties"`
	Attributes map[string]jsonAttributePatch `json:"attributes"`
}

type jsonAttributePatch struct {
	DisplayName      string            `json:"displayName"`
	HelperTextBefore string            `json:"helperTextBefore"`
	HelperTextAfter  string            `json:"helperTextAfter"`
	InputType        string            `json:"inputType"`
	Autocomplete     string            `json:"autocomplete"`
	Required         *bool             `json:"required"`
	ReadOnly         *bool             `json:"readOnly"`
	OptionLabels     map[string]string `json:"optionLabels"`
	DataAnnotations  map[string]string `json:"html5DataAnnotations"`
}

// NewJSONPresetTransformer constructs a transformer from raw JSON bytes.
func NewJSONPresetTransformer(data []byte) (*JSONPresetTransformer, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("json preset transformer: document is empty")
	}
	var document jsonTransformDocument
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("json preset transformer: parse document: %w", err)
	}
	return &JSONPresetTransformer{document: document}, nil
}

// NewJSONPresetTransformerFromFS loads a JSON transformer document from the
// provided filesystem path.
func NewJSONPresetTransformerFromFS(fsys fs.FS, path string) (*JSONPresetTransformer, error) {
	if fsys == nil {
		return nil, errors.New("json preset transformer: filesystem is nil")
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("json preset transformer: path is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("json preset transformer: read %s: %w", path, err)
	}
	return NewJSONPresetTransformer(data)
}

// Transform applies the declarative patches onto kc. Attribute patches only
// apply to pages with a user profile; naming an attribute the profile lacks is
// an error.
func (t *JSONPresetTransformer) Transform(ctx context.Context, kc kccontext.KcContext) error {
	if kc == nil {
		return errors.New("json preset transformer: kcContext is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	base := kc.Base()
	if len(t.document.Messages) > 0 {
		base.Keycloakify.Messages = mergeStringMap(base.Keycloakify.Messages, t.document.Messages)
	}
	if len(t.document.Properties) > 0 {
		base.Properties = mergeStringMap(base.Properties, t.document.Properties)
	}

	profile, ok := kccontext.ProfileOf(kc)
	if !ok || len(t.document.Attributes) == 0 {
		return nil
	}
	for name, patch := range t.document.Attributes {
		if err := ctx.Err(); err != nil {
			return err
		}
		attr := findAttribute(profile, name)
		if attr == nil {
			return fmt.Errorf("json preset transformer: attribute %q not found", name)
		}
		applyAttributePatch(attr, patch)
	}
	return nil
}

func applyAttributePatch(attr *kccontext.Attribute, patch jsonAttributePatch) {
	if patch.DisplayName != "" {
		attr.DisplayName = patch.DisplayName
	}
	if patch.HelperTextBefore != "" {
		attr.Annotations.InputHelperTextBefore = patch.HelperTextBefore
	}
	if patch.HelperTextAfter != "" {
		attr.Annotations.InputHelperTextAfter = patch.HelperTextAfter
	}
	if patch.InputType != "" {
		attr.Annotations.InputType = patch.InputType
	}
	if patch.Autocomplete != "" {
		attr.Autocomplete = patch.Autocomplete
	}
	if patch.Required != nil {
		attr.Required = *patch.Required
	}
	if patch.ReadOnly != nil {
		attr.ReadOnly = *patch.ReadOnly
	}
	if len(patch.OptionLabels) > 0 {
		attr.Annotations.InputOptionLabels = mergeStringMap(attr.Annotations.InputOptionLabels, patch.OptionLabels)
	}
	if len(patch.DataAnnotations) > 0 {
		attr.HTML5DataAnnotations = mergeStringMap(attr.HTML5DataAnnotations, patch.DataAnnotations)
	}
}

func findAttribute(profile *kccontext.UserProfile, name string) *kccontext.Attribute {
	name = strings.TrimSpace(name)
	for i := range profile.Attributes {
		if profile.Attributes[i].Name == name {
			return &profile.Attributes[i]
		}
	}
	return nil
}

func mergeStringMap(dst, src map[string]string) map[string]string {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]string, len(src))
	}
	for key, value := range src {
		dst[key] = value
	}
	return dst
}
