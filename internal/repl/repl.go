package repl

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"flux/internal/parser"
	"flux/internal/transform"
)

const PROMPT = ">> "

// Start runs a line-oriented session. Each line is a transformer; its results
// stay in the session's this-scope for later lines. Directives:
//
//	\cycles <n>        set the phase for subsequent realizations
//	\env <name> <expr> bind a semi-global expression
//	\reset             clear this-scope and the environment
func Start(in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)

	nCycles := 0.0
	env := transform.Environment{}
	session := transform.Result{}

	for {
		fmt.Fprint(out, PROMPT)
		scanned := scanner.Scan()
		if !scanned {
			return
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "\\") {
			if !handleDirective(out, line, &nCycles, env, &session) {
				return
			}
			continue
		}

		tf, errs := parser.Parse(line)
		if len(errs) != 0 {
			printParserErrors(out, errs)
			continue
		}

		session = transform.RealizeInto(nCycles, env, tf, session)
		printResult(out, session)
	}
}

func handleDirective(out io.Writer, line string, nCycles *float64, env transform.Environment, session *transform.Result) bool {
	fields := strings.Fields(line)

	switch fields[0] {
	case "\\quit", "\\q":
		return false

	case "\\cycles":
		if len(fields) != 2 {
			fmt.Fprintln(out, "usage: \\cycles <n>")
			return true
		}
		n, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			fmt.Fprintf(out, "not a number: %s\n", fields[1])
			return true
		}
		*nCycles = n

	case "\\env":
		if len(fields) < 3 {
			fmt.Fprintln(out, "usage: \\env <name> <expr>")
			return true
		}
		name := fields[1]
		rest := strings.TrimSpace(strings.TrimPrefix(line, fields[0]))
		src := strings.TrimSpace(strings.TrimPrefix(rest, name))
		expr, errs := parser.ParseExpression(src)
		if len(errs) != 0 {
			printParserErrors(out, errs)
			return true
		}
		env[name] = expr

	case "\\reset":
		for k := range env {
			delete(env, k)
		}
		*session = transform.Result{}

	default:
		fmt.Fprintf(out, "unknown directive: %s\n", fields[0])
	}

	return true
}

func printResult(out io.Writer, m transform.Result) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Fprintf(out, "%s = %s\n", k, m[k].Inspect())
	}
}

func printParserErrors(out io.Writer, errors []string) {
	io.WriteString(out, " parser errors:\n")
	for _, msg := range errors {
		io.WriteString(out, "\t"+msg+"\n")
	}
}
