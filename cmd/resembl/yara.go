package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/maci0/resembl/internal/asmtoken"
	"github.com/maci0/resembl/internal/store"
)

// emitYaraStub prints a minimal YARA rule matching sn's mnemonic sequence
// as a plain string. Real byte-pattern YARA rule generation needs
// architecture-specific encodings this repository never decodes; this is a
// documented placeholder collaborator, not where the engineering weight of
// the similarity engine lives.
func emitYaraStub(w io.Writer, sn store.Snippet) error {
	toks := asmtoken.Tokenize(sn.Code, true)
	var mnemonics []string
	for _, t := range toks {
		if t.Kind == asmtoken.KindMnemonic {
			mnemonics = append(mnemonics, t.Text)
		}
	}
	ruleName := "resembl_" + hexPrefix(sn.Checksum)
	_, err := fmt.Fprintf(w, "rule %s\n{\n    strings:\n        $seq = \"%s\"\n    condition:\n        $seq\n}\n",
		ruleName, strings.Join(mnemonics, " "))
	return err
}

func hexPrefix(cs store.Checksum) string {
	return checksumHex(cs)[:12]
}
