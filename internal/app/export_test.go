package app

// SetRenderer swaps the guidebook renderer of p.
func SetRenderer(p *EventProcessor, fn func(lang string, d guidebookData) (string, string, string, error)) {
	p.render = fn
}

type GuidebookData = guidebookData
