// SPDX-License-Identifier: Apache-2.0
//
// shaderir-cli builds a single-function *ir.IR from a driver script, runs it
// through dealias -> astify -> validate, and prints both the debug dump and
// a GLSL-ish rendering — a demo/test harness for the target contract,
// grounded on the teacher's own main.go (read file, parse, color-report).
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/tliron/commonlog"

	"shaderir/internal/glsl"
	"shaderir/internal/ir"
	"shaderir/internal/script"
)

func main() {
	commonlog.Configure(1, nil)

	if len(os.Args) < 2 {
		fmt.Println("Usage: shaderir-cli <file.script>")
		os.Exit(1)
	}

	path := os.Args[1]
	source, err := os.ReadFile(path)
	if err != nil {
		color.Red("Failed to read file: %s", err)
		os.Exit(1)
	}

	program, err := script.Parse(path, string(source))
	if err != nil {
		fmt.Print(script.Report(string(source), err))
		os.Exit(1)
	}

	irv := ir.NewIR(ir.ShaderFragment)
	fn := irv.Meta.Functions.New(ir.Function{Name: "main", ReturnType: ir.TypeVoid})
	irv.Meta.Main = fn

	interp := script.NewInterpreter(irv, fn, map[string]ir.VariableId{}, map[string]ir.FunctionId{})
	if err := interp.Run(program); err != nil {
		fmt.Print(script.Report(string(source), err))
		os.Exit(1)
	}

	ir.Dealias(irv)
	ir.Astify(irv)

	if errs := ir.ValidatePostAstify(irv); len(errs) > 0 {
		color.Red("IR failed validation:")
		for _, e := range errs {
			fmt.Println(" -", e)
		}
		os.Exit(1)
	}

	color.Green("✅ built and validated %s", path)

	fmt.Println("\n--- debug dump ---")
	fmt.Print(ir.Dump(irv))

	fmt.Println("\n--- glsl ---")
	fmt.Print(glsl.Generate(irv))
}
