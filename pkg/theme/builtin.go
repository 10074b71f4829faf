package theme

func builtins() []Theme {
	return []Theme{horus(), paper(), noir()}
}

// horus is the studio's black and gold look.
func horus() Theme {
	return Theme{
		Name:       "horus",
		Background: "#0a0a0a",
		Foreground: "#f2f2f2",
		Dim:        "#6b6b6b",
		Accent:     "#c9a227",
		Border:     "#2e2e2e",
		Title:      "#f2f2f2",
		Pending:    "#c9a227",
		Error:      "#d9534f",
		Link:       "#8ab4f8",
		HelpKey:    "#c9a227",
		HelpDesc:   "#6b6b6b",
	}
}

// paper is a light theme for bright terminals.
func paper() Theme {
	return Theme{
		Name:       "paper",
		Background: "#f7f4ee",
		Foreground: "#1c1c1c",
		Dim:        "#8a8577",
		Accent:     "#9c2f1f",
		Border:     "#d6d0c4",
		Title:      "#1c1c1c",
		Pending:    "#9c2f1f",
		Error:      "#b3261e",
		Link:       "#1a56c4",
		HelpKey:    "#9c2f1f",
		HelpDesc:   "#8a8577",
	}
}

// noir is greyscale only.
func noir() Theme {
	return Theme{
		Name:       "noir",
		Background: "#000000",
		Foreground: "#e0e0e0",
		Dim:        "#707070",
		Accent:     "#ffffff",
		Border:     "#303030",
		Title:      "#ffffff",
		Pending:    "#a0a0a0",
		Error:      "#ffffff",
		Link:       "#c0c0c0",
		HelpKey:    "#ffffff",
		HelpDesc:   "#707070",
	}
}
