package css

// Property describes one supported longhand: its initial value and whether
// it inherits when no rule sets it.
type Property struct {
	Name      string
	Initial   string
	Inherited bool
}

var properties = []Property{
	{Name: "display", Initial: "inline"},
	{Name: "color", Initial: "black", Inherited: true},
	{Name: "background-color", Initial: "transparent"},
	{Name: "font-size", Initial: "16px", Inherited: true},
	{Name: "font-weight", Initial: "normal", Inherited: true},
	{Name: "font-style", Initial: "normal", Inherited: true},
	{Name: "font-family", Initial: "monospace", Inherited: true},
	{Name: "line-height", Initial: "normal", Inherited: true},
	{Name: "text-align", Initial: "left", Inherited: true},
	{Name: "text-decoration", Initial: "none"},
	{Name: "white-space", Initial: "normal", Inherited: true},
	{Name: "visibility", Initial: "visible", Inherited: true},
	{Name: "width", Initial: "auto"},
	{Name: "height", Initial: "auto"},
	{Name: "min-width", Initial: "0"},
	{Name: "max-width", Initial: "none"},
	{Name: "min-height", Initial: "0"},
	{Name: "max-height", Initial: "none"},
	{Name: "margin-top", Initial: "0"},
	{Name: "margin-right", Initial: "0"},
	{Name: "margin-bottom", Initial: "0"},
	{Name: "margin-left", Initial: "0"},
	{Name: "padding-top", Initial: "0"},
	{Name: "padding-right", Initial: "0"},
	{Name: "padding-bottom", Initial: "0"},
	{Name: "padding-left", Initial: "0"},
	{Name: "border-top-width", Initial: "medium"},
	{Name: "border-right-width", Initial: "medium"},
	{Name: "border-bottom-width", Initial: "medium"},
	{Name: "border-left-width", Initial: "medium"},
	{Name: "border-top-style", Initial: "none"},
	{Name: "border-right-style", Initial: "none"},
	{Name: "border-bottom-style", Initial: "none"},
	{Name: "border-left-style", Initial: "none"},
	{Name: "border-top-color", Initial: "currentcolor"},
	{Name: "border-right-color", Initial: "currentcolor"},
	{Name: "border-bottom-color", Initial: "currentcolor"},
	{Name: "border-left-color", Initial: "currentcolor"},
}

var propertyIndex = func() map[string]int {
	idx := make(map[string]int, len(properties))
	for i, p := range properties {
		idx[p.Name] = i
	}
	return idx
}()

// LookupProperty returns the registry entry for a longhand name.
func LookupProperty(name string) (Property, bool) {
	i, ok := propertyIndex[name]
	if !ok {
		return Property{}, false
	}
	return properties[i], true
}

// Properties returns every registered property in registry order.
func Properties() []Property {
	out := make([]Property, len(properties))
	copy(out, properties)
	return out
}

// lengthProperties hold lengths whose em units are resolved at cascade time.
var lengthProperties = map[string]bool{
	"width": true, "height": true,
	"min-width": true, "max-width": true, "min-height": true, "max-height": true,
	"margin-top": true, "margin-right": true, "margin-bottom": true, "margin-left": true,
	"padding-top": true, "padding-right": true, "padding-bottom": true, "padding-left": true,
	"border-top-width": true, "border-right-width": true, "border-bottom-width": true, "border-left-width": true,
	"line-height": true,
}
