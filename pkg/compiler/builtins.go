package compiler

// builtinNames are the globals the runtime library provides to every
// compiled query. Every CompilationEnv starts with these declared.
var builtinNames = []string{
	"print",
}
