package schema

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("kind", func(fl validator.FieldLevel) bool {
		_, ok := ParseKind(fl.Field().String())
		return ok
	}); err != nil {
		panic(err)
	}
	v.RegisterStructValidation(rawTypeStructLevel, rawType{})
	return v
}

// rawType is the shape-checked form of a descriptor as read from input.
type rawType struct {
	ID          ID         `json:"id" validate:"required"`
	Kind        string     `json:"kind" validate:"required,kind"`
	Name        string     `json:"name"`
	ItemTypeID  ID         `json:"itemTypeId"`
	ItemTypeIDs []ID       `json:"itemTypeIds" validate:"dive,required"`
	ValueKind   string     `json:"value" validate:"omitempty,oneof=string number boolean"`
	HasFields   bool       `json:"-"`
	Fields      []rawField `json:"fields" validate:"dive"`
}

type rawField struct {
	Name   string `json:"name" validate:"required"`
	TypeID ID     `json:"typeId" validate:"required"`

	doc Documentation
}

// rawTypeStructLevel checks the attributes each kind requires.
func rawTypeStructLevel(sl validator.StructLevel) {
	t := sl.Current().Interface().(rawType)
	kind, ok := ParseKind(t.Kind)
	if !ok {
		return
	}
	switch kind {
	case KindRecord, KindNullable, KindList:
		if t.ItemTypeID == "" {
			sl.ReportError(t.ItemTypeID, "itemTypeId", "ItemTypeID", "required", "")
		}
	case KindUnion, KindIntersect:
		if t.ItemTypeIDs == nil {
			sl.ReportError(t.ItemTypeIDs, "itemTypeIds", "ItemTypeIDs", "required", "")
		}
	case KindLiteral:
		if t.ValueKind == "" {
			sl.ReportError(t.ValueKind, "value", "ValueKind", "required", "")
		}
	case KindObject, KindStruct:
		if !t.HasFields {
			sl.ReportError(t.Fields, "fields", "Fields", "required", "")
		}
	}
}

func (t rawType) validate() error {
	err := validate.Struct(t)
	if err == nil {
		return nil
	}
	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) {
		return errors.Wrapf(err, "types.%s", t.ID)
	}
	msgs := make([]string, 0, len(valErrs))
	for _, ve := range valErrs {
		msgs = append(msgs, fieldPath(t.ID, ve)+": "+formatValidationError(ve))
	}
	return errors.Newf("%s", strings.Join(msgs, "; "))
}

// fieldPath renders a validator namespace ("rawType.fields[0].typeId")
// as a document path ("types.7.fields[0].typeId").
func fieldPath(id ID, ve validator.FieldError) string {
	ns := ve.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return "types." + string(id) + "." + rest
	}
	return "types." + string(id) + "." + ve.Field()
}

// formatValidationError converts a validator.FieldError to a human-readable message.
func formatValidationError(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return "required"
	case "kind":
		return fmt.Sprintf("unknown kind %q (want one of: %s)", ve.Value(), strings.Join(KindNames(), ", "))
	case "oneof":
		return fmt.Sprintf("must be one of: %s", ve.Param())
	default:
		if ve.Param() != "" {
			return fmt.Sprintf("failed %s=%s validation", ve.Tag(), ve.Param())
		}
		return fmt.Sprintf("failed %s validation", ve.Tag())
	}
}

// ValidationError represents a document validation error.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validate checks the document for problems the generator would otherwise
// only discover one at a time: dangling references, colliding export names
// and inline reference cycles. It returns all errors found, not just the first.
func (d *Document) Validate() []error {
	var errs []error
	report := func(code, format string, args ...any) {
		errs = append(errs, &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)})
	}

	checkRef := func(context string, id ID) {
		if _, err := d.Types.Lookup(id); err != nil {
			report("missing_type_reference", "%s references unknown type %s", context, id)
		}
	}

	names := make(map[string]ID)
	_ = d.Types.Each(func(id ID, td TypeDescriptor) error {
		context := "type " + string(id)
		for _, ref := range References(td) {
			checkRef(context, ref)
		}
		if lit, ok := td.(*LiteralDescriptor); ok {
			switch lit.Value.(type) {
			case string, float64, bool:
			default:
				report("invalid_literal", "type %s: literal value must be a string, number or boolean, got %T", id, lit.Value)
			}
		}
		if name := td.DisplayName(); name != "" && td.Kind().IsObject() {
			if prev, ok := names[name]; ok {
				report("duplicate_type_name", "types %s and %s are both named %s", prev, id, name)
			} else {
				names[name] = id
			}
		}
		return nil
	})

	for _, cycle := range d.inlineCycles() {
		parts := make([]string, len(cycle))
		for i, id := range cycle {
			parts[i] = string(id)
		}
		report("reference_cycle", "inline reference cycle: %s", strings.Join(parts, " -> "))
	}

	_ = Walk(d.API, func(path []string, ep *Endpoint) error {
		context := "endpoint " + strings.Join(path, ".")
		checkRef(context+" input", ep.Input)
		checkRef(context+" output", ep.Output)
		return nil
	})

	return errs
}

// References returns the ids td refers to, in order.
func References(td TypeDescriptor) []ID {
	switch d := td.(type) {
	case *RecordDescriptor:
		return []ID{d.Item}
	case *NullableDescriptor:
		return []ID{d.Item}
	case *ListDescriptor:
		return []ID{d.Item}
	case *UnionDescriptor:
		return d.Items
	case *IntersectDescriptor:
		return d.Items
	case *ObjectDescriptor:
		ids := make([]ID, len(d.Fields))
		for i, f := range d.Fields {
			ids[i] = f.Type
		}
		return ids
	default:
		return nil
	}
}

// inlineCycles finds reference cycles that pass only through inline
// composites. Named types and inline objects are rendered as names, so a
// cycle through them terminates.
func (d *Document) inlineCycles() [][]ID {
	var cycles [][]ID
	visited := make(map[ID]bool)
	inStack := make(map[ID]bool)

	var visit func(id ID, path []ID)
	visit = func(id ID, path []ID) {
		td, err := d.Types.Lookup(id)
		if err != nil || td.DisplayName() != "" || td.Kind().IsObject() {
			return
		}
		if inStack[id] {
			start := 0
			for i, p := range path {
				if p == id {
					start = i
					break
				}
			}
			cycles = append(cycles, append(append([]ID(nil), path[start:]...), id))
			return
		}
		if visited[id] {
			return
		}
		visited[id] = true
		inStack[id] = true
		for _, ref := range References(td) {
			visit(ref, append(path, id))
		}
		inStack[id] = false
	}

	for _, id := range d.Types.IDs() {
		visit(id, nil)
	}
	return cycles
}
