package main

// Options holds the tsblame subcommands; the active one is named by
// parser.Active.
type Options struct {
	Check *Check `command:"check" description:"check a JSON or YAML document against a declared type"`
	Dump  *Dump  `command:"dump" description:"print the types of a declaration file"`
	Log   *Log   `command:"log" description:"list reports recorded by check"`
}

type Check struct {
	Decls     string `short:"d" long:"decls" description:"declaration file URL" required:"true"`
	Type      string `short:"t" long:"type" description:"registered type, global or module name" required:"true"`
	Input     string `short:"i" long:"input" description:"document URL (.json, .yaml or .yml)" required:"true"`
	ConfigURL string `short:"c" long:"config" description:"config URL"`
	Record    string `short:"r" long:"record" description:"bbolt file receiving reports"`
}

type Dump struct {
	Decls   string `short:"d" long:"decls" description:"declaration file URL" required:"true"`
	Verify  bool   `long:"verify" description:"fail on unregistered type names"`
	Verbose bool   `short:"v" long:"verbose" description:"print type structure"`
}

type Log struct {
	Record    string `short:"r" long:"record" description:"bbolt file holding reports"`
	Namespace string `short:"n" long:"namespace" description:"report bucket"`
	ConfigURL string `short:"c" long:"config" description:"config URL"`
	Clear     bool   `long:"clear" description:"drop recorded reports after listing"`
}

// newOptions allocates every command so the parser can fill whichever one
// is selected.
func newOptions() *Options {
	return &Options{Check: &Check{}, Dump: &Dump{}, Log: &Log{}}
}
