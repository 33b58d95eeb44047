package model

// Subject предмет, который ведёт учитель
type Subject struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
