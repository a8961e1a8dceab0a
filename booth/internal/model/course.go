package model

import (
	"sort"
	"time"
)

// DefaultCourseOrder places courses without an order after all ordered ones.
const DefaultCourseOrder = 9999

// DefaultReservationColor is used for reservations without a colored course.
const DefaultReservationColor = "#ffcdd2"

type Course struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	ColorName string    `json:"colorName"`
	Order     *int      `json:"order,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

func (c Course) SortOrder() int {
	if c.Order == nil {
		return DefaultCourseOrder
	}
	return *c.Order
}

func SortCourses(cs []Course) {
	sort.SliceStable(cs, func(i, j int) bool {
		return cs[i].SortOrder() < cs[j].SortOrder()
	})
}

type PaletteColor struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

var Palette = []PaletteColor{
	{Name: "ピンク", Value: "#FFC0CB"},
	{Name: "青", Value: "#4169E1"},
	{Name: "赤", Value: "#FF0000"},
	{Name: "水色", Value: "#00CED1"},
	{Name: "黄色", Value: "#FFD700"},
	{Name: "緑", Value: "#32CD32"},
	{Name: "灰色", Value: "#808080"},
}

// CourseColor finds the color of the named course, or DefaultReservationColor.
func CourseColor(courses []Course, name string) string {
	if name == "" {
		return DefaultReservationColor
	}
	for _, c := range courses {
		if c.Name == name && c.Color != "" {
			return c.Color
		}
	}
	return DefaultReservationColor
}
