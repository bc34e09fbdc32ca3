package doc

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// collectWidgets walks the AcroForm Fields array and converts each field
// into a Widget. Fields that cannot be decoded are skipped; a document
// without an AcroForm yields an empty slice.
func collectWidgets(ctx *model.Context) ([]Widget, error) {
	fields, _, err := acroFormFields(ctx)
	if err != nil {
		return nil, err
	}

	widgets := make([]Widget, 0, len(fields))
	for i, fieldRef := range fields {
		fieldDict, err := ctx.DereferenceDict(fieldRef)
		if err != nil || fieldDict == nil {
			continue
		}

		w := Widget{
			Name: fieldName(ctx, fieldDict, i),
			Type: fieldType(ctx, fieldDict),
		}
		if valueObj, found := fieldDict.Find("V"); found {
			if val, err := ctx.DereferenceStringOrHexLiteral(valueObj, model.V10, nil); err == nil {
				w.Value = val
			}
		}
		w.Rect, w.Page = fieldBounds(ctx, fieldDict)
		widgets = append(widgets, w)
	}
	return widgets, nil
}

// setFieldValue finds the field named name in the AcroForm and sets its
// value, enabling NeedAppearances so viewers regenerate the appearance.
func setFieldValue(ctx *model.Context, name, value string) error {
	fields, acroDict, err := acroFormFields(ctx)
	if err != nil {
		return err
	}

	for i, fieldRef := range fields {
		fieldDict, err := ctx.DereferenceDict(fieldRef)
		if err != nil || fieldDict == nil {
			continue
		}
		if fieldName(ctx, fieldDict, i) != name {
			continue
		}

		fieldDict["V"] = types.StringLiteral(value)
		// Stale appearance streams would keep showing the old value.
		delete(fieldDict, "AP")
		acroDict["NeedAppearances"] = types.Boolean(true)
		return nil
	}
	return fmt.Errorf("%w: %q", ErrNoSuchWidget, name)
}

// acroFormFields resolves the document's AcroForm Fields array. A missing
// AcroForm is not an error; it returns an empty array.
func acroFormFields(ctx *model.Context) (types.Array, types.Dict, error) {
	rootDict, err := ctx.Catalog()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get catalog: %w", err)
	}

	acroFormObj, found := rootDict.Find("AcroForm")
	if !found {
		return types.Array{}, types.Dict{}, nil
	}
	acroFormDict, err := ctx.DereferenceDict(acroFormObj)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to dereference AcroForm: %w", err)
	}
	if acroFormDict == nil {
		return types.Array{}, types.Dict{}, nil
	}

	fieldsObj, found := acroFormDict.Find("Fields")
	if !found {
		return types.Array{}, acroFormDict, nil
	}
	fieldsArray, err := ctx.DereferenceArray(fieldsObj)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to dereference Fields array: %w", err)
	}
	return fieldsArray, acroFormDict, nil
}

// fieldName extracts the partial field name (T entry), generating a
// stable placeholder when absent.
func fieldName(ctx *model.Context, fieldDict types.Dict, index int) string {
	if nameObj, found := fieldDict.Find("T"); found {
		if name, err := ctx.DereferenceStringOrHexLiteral(nameObj, model.V10, nil); err == nil && name != "" {
			return name
		}
	}
	return fmt.Sprintf("field_%d", index)
}

// fieldType maps the FT entry (possibly inherited from a parent field)
// onto a WidgetType. Button subtypes are resolved from the field flags.
func fieldType(ctx *model.Context, fieldDict types.Dict) WidgetType {
	ftObj, found := fieldDict.Find("FT")
	if !found {
		if parentObj, found := fieldDict.Find("Parent"); found {
			if parentDict, err := ctx.DereferenceDict(parentObj); err == nil && parentDict != nil {
				return fieldType(ctx, parentDict)
			}
		}
		return WidgetUnknown
	}

	ftName, err := ctx.DereferenceName(ftObj, model.V10, nil)
	if err != nil {
		return WidgetUnknown
	}

	switch ftName {
	case "Tx":
		return WidgetText
	case "Sig":
		return WidgetSignature
	case "Ch":
		return WidgetSelect
	case "Btn":
		if flagsObj, found := fieldDict.Find("Ff"); found {
			if flags, err := ctx.DereferenceInteger(flagsObj); err == nil && flags != nil {
				if (*flags & (1 << 15)) != 0 { // Bit 16: Radio
					return WidgetRadio
				}
				if (*flags & (1 << 16)) != 0 { // Bit 17: Pushbutton
					return WidgetButton
				}
			}
		}
		return WidgetCheckbox
	default:
		return WidgetUnknown
	}
}

// fieldBounds extracts the widget rectangle from the field dictionary or
// its first kid annotation. Page resolution from annotation back
// references is not implemented; widgets report page 0.
func fieldBounds(ctx *model.Context, fieldDict types.Dict) (Rect, int) {
	if rectObj, found := fieldDict.Find("Rect"); found {
		if r, ok := parseRect(ctx, rectObj); ok {
			return r, 0
		}
	}

	if kidsObj, found := fieldDict.Find("Kids"); found {
		if kidsArray, err := ctx.DereferenceArray(kidsObj); err == nil && len(kidsArray) > 0 {
			if widgetDict, err := ctx.DereferenceDict(kidsArray[0]); err == nil && widgetDict != nil {
				if rectObj, found := widgetDict.Find("Rect"); found {
					if r, ok := parseRect(ctx, rectObj); ok {
						return r, 0
					}
				}
			}
		}
	}
	return Rect{}, 0
}

// parseRect decodes a PDF Rect array into a bottom-left space rectangle.
// The caller converts to the top-left space used by the rest of the
// engine once the page height is known.
func parseRect(ctx *model.Context, rectObj types.Object) (Rect, bool) {
	rectArray, err := ctx.DereferenceArray(rectObj)
	if err != nil || len(rectArray) != 4 {
		return Rect{}, false
	}

	coords := make([]float64, 4)
	for i, coord := range rectArray {
		f, err := ctx.DereferenceNumber(coord)
		if err != nil {
			return Rect{}, false
		}
		coords[i] = f
	}
	return Rect{X0: coords[0], Y0: coords[1], X1: coords[2], Y1: coords[3]}, true
}
