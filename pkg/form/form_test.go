package form

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-micomedor/pkg/validation"
)

type item struct {
	ID          int64
	Description string
	Amount      float64
	Category    int64
	Date        string
}

type itemShape struct {
	Description string
	Amount      Number
	Category    Ref
	Date        string
}

func itemDefinition() Definition[item, itemShape] {
	return Definition[item, itemShape]{
		Name: "item",
		Schema: validation.NewSchema(
			validation.Field{Name: "description", Rules: []validation.Rule{validation.Required(), validation.Letters()}},
			validation.Field{Name: "amount", Rules: []validation.Rule{validation.Required(), validation.Positive()}},
			validation.Field{Name: "category", Rules: []validation.Rule{validation.Required()}},
			validation.Field{Name: "date", Rules: []validation.Rule{validation.Date()}},
		),
		Filters: map[string]InputFilter{
			"amount": Chain(DecimalInput, StripLeadingZeros),
		},
		WireNames: map[string]string{"descriptionItem": "description"},
		Values: func(r item) Values {
			v := Values{
				"description": r.Description,
				"category":    FormatID(r.Category),
				"date":        r.Date,
			}
			if r.Amount != 0 {
				v["amount"] = FormatNumber(r.Amount)
			}
			return v
		},
		Shape: func(v Values) itemShape {
			return itemShape{
				Description: Text(v.Get("description")),
				Amount:      NumberOf(v.Get("amount")),
				Category:    RefOf(v.Get("category")),
				Date:        DateOf(v.Get("date")),
			}
		},
		Build: func(base item, v Values) (item, error) {
			amount, err := strconv.ParseFloat(strings.TrimSpace(v.Get("amount")), 64)
			if err != nil {
				return item{}, err
			}
			base.Description = Text(v.Get("description"))
			base.Amount = amount
			base.Category = RefOf(v.Get("category")).ID
			base.Date = DateOf(v.Get("date"))
			return base, nil
		},
		Messages: Messages{Conflict: "El artículo ya existe."},
	}
}

func existingItem() item {
	return item{ID: 7, Description: "Arroz", Amount: 10, Category: 2, Date: "2024-05-01T00:00:00.000+00:00"}
}
