package settings

// Form is a rendered settings form.
type Form struct {
	Groups []Group `json:"groups" doc:"Widget groups in display order"`
}

// Group is a titled run of widgets.
type Group struct {
	Title   string   `json:"title" example:"Profile" doc:"Group caption"`
	Widgets []Widget `json:"widgets" doc:"Widgets in display order"`
}

// Widget is one rendered control with its current value.
type Widget struct {
	ID      string   `json:"id" example:"w0" doc:"Widget id, used to set the value"`
	Kind    Kind     `json:"kind" enum:"switch,select,slider,color" doc:"Widget type"`
	Label   string   `json:"label" example:"Brightness" doc:"Widget caption"`
	Value   any      `json:"value" doc:"Current value: bool for switch, number otherwise"`
	Options []string `json:"options,omitempty" doc:"Select options, indexed by value"`
	Min     *uint8   `json:"min,omitempty" doc:"Slider minimum"`
	Max     *uint8   `json:"max,omitempty" doc:"Slider maximum"`
	Step    *uint8   `json:"step,omitempty" doc:"Slider step"`
	Unit    string   `json:"unit,omitempty" example:"ms" doc:"Slider unit"`
}

// Find returns the widget with the given id.
func (f Form) Find(id string) (Widget, bool) {
	for _, g := range f.Groups {
		for _, w := range g.Widgets {
			if w.ID == id {
				return w, true
			}
		}
	}
	return Widget{}, false
}

// FindLabel returns the first widget with the given label.
func (f Form) FindLabel(label string) (Widget, bool) {
	for _, g := range f.Groups {
		for _, w := range g.Widgets {
			if w.Label == label {
				return w, true
			}
		}
	}
	return Widget{}, false
}

// Labels lists every widget label in build order.
func (f Form) Labels() []string {
	var labels []string
	for _, g := range f.Groups {
		for _, w := range g.Widgets {
			labels = append(labels, w.Label)
		}
	}
	return labels
}

// Renderer is a Builder that records the form without changing anything.
type Renderer struct {
	ids
	form Form
	open bool
}

// NewRenderer returns an empty Renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Form returns the collected form.
func (r *Renderer) Form() Form {
	return r.form
}

func (r *Renderer) BeginGroup(title string) {
	r.form.Groups = append(r.form.Groups, Group{Title: title})
	r.open = true
}

func (r *Renderer) EndGroup() {
	r.open = false
}

func (r *Renderer) add(w Widget) {
	if !r.open {
		r.BeginGroup("")
	}
	w.ID = r.take()
	g := &r.form.Groups[len(r.form.Groups)-1]
	g.Widgets = append(g.Widgets, w)
}

func (r *Renderer) Switch(label string, v *bool) bool {
	r.add(Widget{Kind: KindSwitch, Label: label, Value: *v})
	return false
}

func (r *Renderer) Select(label, options string, v *uint8) bool {
	r.add(Widget{Kind: KindSelect, Label: label, Value: int(*v), Options: SplitOptions(options)})
	return false
}

func (r *Renderer) Slider(label string, min, max, step uint8, unit string, v *uint8) bool {
	r.add(Widget{Kind: KindSlider, Label: label, Value: int(*v), Min: &min, Max: &max, Step: &step, Unit: unit})
	return false
}

func (r *Renderer) Color(label string, v *uint32) bool {
	r.add(Widget{Kind: KindColor, Label: label, Value: int(*v)})
	return false
}

func (r *Renderer) WasSet() bool { return false }
func (r *Renderer) ClearSet()    {}
func (r *Renderer) Reload()      {}
