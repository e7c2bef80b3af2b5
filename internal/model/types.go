package model

type Credentials struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// Printer is a network printer that accepts raw PDF jobs, usually on port 9100.
type Printer struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Enabled bool   `json:"enabled"`
}

// Sheet is the rendered output of one run.
type Sheet struct {
	PDF      []byte
	Vouchers int
	Pages    int
	Renderer string
}
