package repo

// DefaultLanguageColor is used for unknown or absent languages.
const DefaultLanguageColor = "#6b7280"

// languageColors follows the GitHub Linguist palette.
var languageColors = map[string]string{
	// Web
	"TypeScript": "#3178c6",
	"JavaScript": "#f1e05a",
	"HTML":       "#e34c26",
	"CSS":        "#1572b6",
	"SCSS":       "#c6538c",
	"Sass":       "#a53b70",
	"Less":       "#1d365d",
	"Vue":        "#4fc08d",
	"Svelte":     "#ff3e00",
	"Astro":      "#ff5d01",

	// Backend
	"Python":  "#3776ab",
	"Java":    "#b07219",
	"C#":      "#239120",
	"C++":     "#00599c",
	"C":       "#a8b9cc",
	"Go":      "#00add8",
	"Rust":    "#dea584",
	"PHP":     "#4f5d95",
	"Ruby":    "#701516",
	"Swift":   "#fa7343",
	"Kotlin":  "#a97bff",
	"Scala":   "#c22d40",
	"Dart":    "#00b4ab",
	"R":       "#198ce7",
	"MATLAB":  "#e16737",
	"Perl":    "#39457e",
	"Lua":     "#000080",
	"Haskell": "#5e5086",
	"Clojure": "#db5855",
	"Elixir":  "#6e4a7e",
	"Erlang":  "#b83998",
	"F#":      "#b845fc",
	"OCaml":   "#3be133",
	"Nim":     "#ffc200",
	"Crystal": "#000100",
	"Zig":     "#ec915c",
	"Nix":     "#7e7eff",

	// Shell and build
	"Shell":      "#89e051",
	"PowerShell": "#012456",
	"Batchfile":  "#c1f12e",
	"Dockerfile": "#384d54",
	"Makefile":   "#427819",
	"CMake":      "#da3434",

	// Data and docs
	"YAML":     "#cb171e",
	"Markdown": "#083fa1",
	"TeX":      "#3d6117",

	// Low level
	"Assembly":      "#6e4c13",
	"WebAssembly":   "#654ff0",
	"Verilog":       "#b2b7f8",
	"SystemVerilog": "#dae1c2",
	"VHDL":          "#adb2cb",

	// Infrastructure
	"HCL":       "#844fba",
	"Puppet":    "#ffa500",
	"Terraform": "#7b42bc",

	// Notebooks and functional
	"Jupyter Notebook": "#da5b0b",
	"Elm":              "#60b5cc",
	"PureScript":       "#1b222c",
	"Coq":              "#d0b68c",
	"Lean":             "#000000",
}

// LanguageColor returns the hex color for a language name.
func LanguageColor(name string) string {
	if c, ok := languageColors[name]; ok {
		return c
	}
	return DefaultLanguageColor
}
