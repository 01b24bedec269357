package iface

import (
	"context"
	"fmt"
	"io"
)

// UnimplementedRunner is the default ScriptRunner: it answers every
// call with an error identifying which interpreter binding is
// missing. It exists so a server can be fully assembled and routed
// end to end — registry lookup, virtual-host dispatch, path matching
// — without a real Python/PHP/Ruby runtime linked in, surfacing a
// clear 500 at the one seam that does need one instead of refusing to
// start.
type UnimplementedRunner struct {
	Kind string
}

func (u UnimplementedRunner) Run(ctx context.Context, env map[string]string, input io.Reader, body io.Writer, start StartResponse) error {
	return fmt.Errorf("no %s runtime binding configured", u.Kind)
}

var _ ScriptRunner = UnimplementedRunner{}
