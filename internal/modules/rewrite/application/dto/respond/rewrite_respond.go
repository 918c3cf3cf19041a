package respond

type RewriteRespond struct {
	Rewritten string `json:"rewritten"`
}

type PresetsRespond struct {
	Presets []string `json:"presets"`
}

type HealthRespond struct {
	OK    bool   `json:"ok"`
	Model string `json:"model"`
}
