package utils

import (
	"math"
	"strconv"
	"strings"

	"github.com/survey-reachability/internal/domain"
)

// NoDetails - текст попапа, когда у объекта нет ни одного заполненного поля
const NoDetails = "No details"

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// EscapeHTML экранирует текст для вставки в разметку попапа
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// PopupLine - строка попапа "Label: Value"
type PopupLine struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// BuildPopupLines возвращает непустые поля объекта в порядке fields
func BuildPopupLines(a domain.Amenity, fields []string) []PopupLine {
	lines := make([]PopupLine, 0, len(fields))
	for _, field := range fields {
		value := a.AttributeString(field)
		if value == "" {
			continue
		}
		lines = append(lines, PopupLine{Label: field, Value: value})
	}
	return lines
}

// ReachabilityLines - строки о достижимости, дописываемые к попапу маркера.
// reachedBy == "" означает, что ни один активный сценарий не покрывает объект.
func ReachabilityLines(reachedBy string, distanceM float64) []PopupLine {
	reachable := "No"
	by := "None selected"
	if reachedBy != "" {
		reachable = "Yes"
		by = reachedBy
	}

	return []PopupLine{
		{Label: "Reachable", Value: reachable},
		{Label: "Reached by", Value: by},
		{Label: "Distance", Value: strconv.FormatInt(RoundMeters(distanceM), 10) + " m"},
	}
}

// RoundMeters округляет расстояние до целых метров (половина - вверх)
func RoundMeters(distanceM float64) int64 {
	return int64(math.Floor(distanceM + 0.5))
}

// PopupHTML собирает HTML попапа: поля объекта (или "No details") и дополнительные строки
func PopupHTML(fieldLines, extra []PopupLine) string {
	var b strings.Builder

	b.WriteString("<div>")
	if len(fieldLines) == 0 {
		b.WriteString("<em>" + NoDetails + "</em>")
	}
	writeLines(&b, fieldLines)
	b.WriteString("</div>")
	writeLines(&b, extra)

	return b.String()
}

func writeLines(b *strings.Builder, lines []PopupLine) {
	for _, l := range lines {
		b.WriteString("<div><strong>")
		b.WriteString(EscapeHTML(l.Label))
		b.WriteString(":</strong> ")
		b.WriteString(EscapeHTML(l.Value))
		b.WriteString("</div>")
	}
}
