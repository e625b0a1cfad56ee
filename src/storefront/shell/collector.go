package shell

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/JuanBohorquezA/SandwichAsere/src/storefront/checkout"
)

// Collector prompts for customer details on the terminal. Answering
// "cancel" or closing the input dismisses the prompt.
type Collector struct {
	lines <-chan string
	out   io.Writer
}

// NewCollector reads answers from lines and writes prompts to out.
func NewCollector(lines <-chan string, out io.Writer) *Collector {
	return &Collector{lines: lines, out: out}
}

func (c *Collector) CollectInfo(ctx context.Context, invalid error) checkout.Collected {
	if invalid != nil {
		fmt.Fprintf(c.out, "Please correct: %v\n", invalid)
	} else {
		fmt.Fprintln(c.out, `Checkout: enter your details ("cancel" to go back).`)
	}

	var info checkout.CustomerInfo
	for _, field := range []struct {
		prompt string
		dst    *string
	}{
		{"Name: ", &info.Name},
		{"Email: ", &info.Email},
		{"Phone (optional): ", &info.Phone},
	} {
		answer, ok := c.ask(ctx, field.prompt)
		if !ok {
			return checkout.Collected{Outcome: checkout.Dismissed}
		}
		*field.dst = answer
	}
	return checkout.Collected{Outcome: checkout.Submitted, Info: info}
}

func (c *Collector) ask(ctx context.Context, prompt string) (string, bool) {
	fmt.Fprint(c.out, prompt)
	select {
	case <-ctx.Done():
		return "", false
	case line, ok := <-c.lines:
		if !ok || strings.EqualFold(strings.TrimSpace(line), "cancel") {
			return "", false
		}
		return line, true
	}
}
