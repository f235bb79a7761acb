package handler

type CompositionParams struct {
	CompositionID string `param:"composition_id"`
	Name          string `                         json:"name"`
	Description   string `                         json:"description"`
	Definition    string `                         json:"definition"`
}

type RenderParams struct {
	CompositionID string `param:"composition_id"`
	RenderID      string `param:"render_id"`
}
