// multichecker проекта: все SA-анализаторы staticcheck, выборочные проверки
// остальных классов, часть стандартных анализаторов x/tools и собственный
// запрет прямого вызова os.Exit в функции main
package main

import (
	"strings"

	"github.com/Antonboom/testifylint/analyzer"
	"github.com/timakin/bodyclose/passes/bodyclose"
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/multichecker"
	"golang.org/x/tools/go/analysis/passes/loopclosure"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/slog"
	"golang.org/x/tools/go/analysis/passes/unreachable"
	"honnef.co/go/tools/simple"
	"honnef.co/go/tools/staticcheck"
	"honnef.co/go/tools/stylecheck"

	"github.com/Sor85/miao-kit/internal/linter"
)

func main() {
	checks := make([]*analysis.Analyzer, 0, 150)

	for _, v := range staticcheck.Analyzers {
		if strings.HasPrefix(v.Analyzer.Name, "SA") {
			checks = append(checks, v.Analyzer)
		}
	}

	s1 := []string{"S1001", "S1040"}
	for _, v := range simple.Analyzers {
		for _, name := range s1 {
			if name == v.Analyzer.Name {
				checks = append(checks, v.Analyzer)
				break
			}
		}
	}

	st := []string{"ST1015", "ST1022"}
	for _, v := range stylecheck.Analyzers {
		for _, name := range st {
			if name == v.Analyzer.Name {
				checks = append(checks, v.Analyzer)
				break
			}
		}
	}

	checks = append(checks, printf.Analyzer)
	checks = append(checks, slog.Analyzer)
	checks = append(checks, unreachable.Analyzer)
	checks = append(checks, loopclosure.Analyzer)

	checks = append(checks, bodyclose.Analyzer)
	checks = append(checks, analyzer.New())

	checks = append(checks, linter.New(nil))

	multichecker.Main(checks...)
}
