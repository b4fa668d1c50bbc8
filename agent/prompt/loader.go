package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/supervisor.txt
	supervisorRaw string

	//go:embed template/general.txt
	generalRaw string

	//go:embed template/executor.txt
	executorRaw string

	//go:embed template/synthesizer.txt
	synthesizerRaw string
)

// PromptSet holds loaded prompt content. The supervisor template carries an
// {agents} marker and the executor template a {tools} marker; both are
// filled in at registry build time.
type PromptSet struct {
	Supervisor  string
	General     string
	Executor    string
	Synthesizer string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Supervisor:  strings.TrimSpace(supervisorRaw),
		General:     strings.TrimSpace(generalRaw),
		Executor:    strings.TrimSpace(executorRaw),
		Synthesizer: strings.TrimSpace(synthesizerRaw),
	}
}
