// пакет linter содержит анализатор, запрещающий вызовы отдельных функций
// в заданных местах. по умолчанию проверяется единственное правило:
// в функции main пакета main нельзя напрямую вызывать os.Exit
package linter

import (
	"go/ast"

	"golang.org/x/tools/go/analysis"
)

const forbiddenText = "forbidden function call"

// Rule описывает один запрет на вызов функции
type Rule struct {
	// Pkg пакет, в котором действует запрет. пустое значение - все пакеты
	Pkg string
	// FromFunction функция, из которой запрещен вызов. пустое значение - все функции
	FromFunction string
	// Function запрещенная к вызову функция
	Function Func
}

// Func вызываемая функция. при пустом Pkg сравнивается только имя
type Func struct {
	Pkg  string
	Name string
}

var defaultRules = []Rule{
	{
		Pkg:          "main",
		FromFunction: "main",
		Function: Func{
			Pkg:  "os",
			Name: "Exit",
		},
	},
}

// New создает анализатор с правилами rules. без правил используется запрет os.Exit в main
func New(rules []Rule) *analysis.Analyzer {
	if len(rules) == 0 {
		rules = defaultRules
	}
	return &analysis.Analyzer{
		Name: "forbiddencalls",
		Doc:  "reports direct calls of forbidden functions",
		Run: func(pass *analysis.Pass) (interface{}, error) {
			return run(pass, rules)
		},
	}
}

func run(pass *analysis.Pass, rules []Rule) (interface{}, error) {
	for _, rule := range rules {
		if rule.Function.Name == "" {
			continue
		}
		for _, file := range pass.Files {
			ast.Inspect(file, func(n ast.Node) bool {
				switch x := n.(type) {
				case *ast.File:
					if rule.Pkg != "" && x.Name.Name != rule.Pkg {
						return false
					}
				case *ast.FuncDecl:
					if rule.FromFunction != "" && x.Name.Name != rule.FromFunction {
						return false
					}
				case *ast.CallExpr:
					switch fn := x.Fun.(type) {
					case *ast.Ident:
						// вызов без селектора пакета
						if rule.Function.Pkg == "" && fn.Name == rule.Function.Name {
							pass.Reportf(x.Pos(), forbiddenText)
						}
					case *ast.SelectorExpr:
						pkg := ""
						if ident, ok := fn.X.(*ast.Ident); ok {
							pkg = ident.Name
						}
						if pkg == rule.Function.Pkg && fn.Sel.Name == rule.Function.Name {
							pass.Reportf(x.Pos(), forbiddenText)
						}
					}
				}
				return true
			})
		}
	}
	return nil, nil
}
