package entity

// BoardVariant - набор колонок конкретной доски
type BoardVariant string

const (
	VariantPipeline BoardVariant = "pipeline"
	VariantSimple   BoardVariant = "simple"
)

type Column struct {
	ID    TaskStatus `json:"id"`
	Title string     `json:"title"`
}
