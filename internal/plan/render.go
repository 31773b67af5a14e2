package plan

import (
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"github.com/sakif/fittrack/internal/model"
)

// itemTmpl renders one plan entry. html/template escapes every field, so a
// model answer containing markup cannot inject into the dashboard.
var itemTmpl = template.Must(template.New("item").Parse(
	`<li class="plan-item" data-name="{{.Name}}" data-calories="{{.Calories}}" data-type="{{.Kind}}">` +
		`<input type="checkbox"><div class="item-details">` +
		`<div class="item-name">{{.Label}}: {{.Name}}</div>` +
		`<div class="item-info">{{.Info}}</div></div>` +
		`<div class="item-actions"><button class="edit-btn"><i class="fas fa-pencil-alt"></i></button></div></li>`,
))

type itemView struct {
	Label    string
	Name     string
	Calories string
	Kind     string
	Info     string
}

// Kind is the data-type attribute value: what logging the item creates.
func Kind(t model.PlanType) string {
	if t == model.PlanWorkout {
		return "workout"
	}
	return "meal"
}

// Render produces the cached list markup for items. An empty slice renders
// to the empty string.
func Render(items []model.PlanItem, t model.PlanType) (string, error) {
	var b strings.Builder
	for _, it := range items {
		info := fmt.Sprintf("%.0f kcal", it.Value)
		if t == model.PlanWorkout {
			info += " burned"
		}
		view := itemView{
			Label:    it.Label,
			Name:     it.Name,
			Calories: strconv.FormatFloat(it.Value, 'f', -1, 64),
			Kind:     Kind(t),
			Info:     info,
		}
		if err := itemTmpl.Execute(&b, view); err != nil {
			return "", fmt.Errorf("plan: rendering item %q: %w", it.Name, err)
		}
	}
	return b.String(), nil
}
