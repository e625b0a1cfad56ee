// Package shell is the terminal front end: it reads cart commands from a
// line-oriented input and draws the cart and notices to an output.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/JuanBohorquezA/SandwichAsere/src/storefront/cart"
	"github.com/JuanBohorquezA/SandwichAsere/src/storefront/checkout"
	"github.com/JuanBohorquezA/SandwichAsere/src/storefront/model"
	"github.com/JuanBohorquezA/SandwichAsere/src/storefront/presenter"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const usage = `Commands:
  menu [category]   list products ("menu popular" for favourites)
  add <id> [qty]    add a product to the cart
  inc <id>          one more
  dec <id>          one less
  rm <id>           remove the line
  qty <id> <n>      set the quantity (0 removes)
  cart              open the cart
  close             close the cart
  clear             empty the cart
  checkout          place the order
  help              this text
  quit              leave
`

var errQuit = errors.New("quit")

// Catalog is what the shell reads from the menu.
type Catalog interface {
	ProductByID(id int) (model.Product, bool)
	ByCategory(category string) []model.Product
	Popular() []model.Product
	Categories() []model.Category
}

// CartView is the drawable cart.
type CartView interface {
	OpenCart()
	CloseCart()
}

// Shell runs one terminal session over a cart engine.
type Shell struct {
	in      io.Reader
	out     io.Writer
	engine  *cart.Engine
	catalog Catalog
	view    CartView
	flow    *checkout.Flow
	log     logrus.FieldLogger
}

// New returns a shell reading commands from in and writing to out.
func New(in io.Reader, out io.Writer, engine *cart.Engine, catalog Catalog, view CartView, flow *checkout.Flow, log logrus.FieldLogger) *Shell {
	return &Shell{
		in:      in,
		out:     out,
		engine:  engine,
		catalog: catalog,
		view:    view,
		flow:    flow,
		log:     log,
	}
}

// Run processes commands until quit, end of input or ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	lines := readLines(ctx, s.in)
	collector := NewCollector(lines, s.out)

	fmt.Fprintln(s.out, `Sandwich Asere. Type "help" for commands.`)
	for {
		fmt.Fprint(s.out, "> ")
		var line string
		select {
		case <-ctx.Done():
			return nil
		case l, ok := <-lines:
			if !ok {
				return nil
			}
			line = l
		}

		err := s.exec(ctx, line, collector)
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintln(s.out, err)
		}
	}
}

func (s *Shell) exec(ctx context.Context, line string, collector checkout.InfoCollector) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "menu":
		return s.menu(args)
	case "add":
		return s.add(ctx, args)
	case "inc", "dec", "rm":
		return s.control(ctx, cmd, args)
	case "qty":
		return s.quantity(ctx, args)
	case "cart":
		s.view.OpenCart()
	case "close":
		s.view.CloseCart()
	case "clear":
		s.engine.Clear(ctx)
	case "checkout":
		return s.checkout(ctx, collector)
	case "help", "?":
		fmt.Fprint(s.out, usage)
	case "quit", "exit":
		return errQuit
	default:
		return errors.Errorf("unknown command %q, type help", cmd)
	}
	return nil
}

func (s *Shell) menu(args []string) error {
	category := ""
	if len(args) > 0 {
		category = strings.ToLower(args[0])
	}
	var products []model.Product
	if category == "popular" {
		products = s.catalog.Popular()
	} else {
		products = s.catalog.ByCategory(category)
	}
	if len(products) == 0 {
		var names []string
		for _, c := range s.catalog.Categories() {
			names = append(names, c.ID)
		}
		return errors.Errorf("no products in %q (categories: %s)", category, strings.Join(names, ", "))
	}
	for _, p := range products {
		star := " "
		if p.Popular {
			star = "*"
		}
		fmt.Fprintf(s.out, "%s #%-3d %-28s %8s  %s\n", star, p.ID, p.Name, presenter.FormatMoney(p.Price), p.Category)
	}
	return nil
}

func (s *Shell) add(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return errors.New("usage: add <id> [qty]")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	qty := 1
	if len(args) == 2 {
		if qty, err = strconv.Atoi(args[1]); err != nil || qty < 1 {
			return errors.Errorf("quantity must be a positive number, got %q", args[1])
		}
		if qty > cart.MaxQuantity {
			return errors.Errorf("usage: add <id> [qty], qty is at most %d", cart.MaxQuantity)
		}
	}
	product, ok := s.catalog.ProductByID(id)
	if !ok {
		return errors.Errorf("no product #%d on the menu", id)
	}
	if have := s.engine.ItemQuantity(id); have > cart.MaxQuantity-qty {
		return errors.Errorf("%s already has %d in the cart, the limit is %d", product.Name, have, cart.MaxQuantity)
	}
	s.engine.AddItem(ctx, product, qty)
	return nil
}

var shellActions = map[string]cart.Action{
	"inc": cart.Increase,
	"dec": cart.Decrease,
	"rm":  cart.Remove,
}

func (s *Shell) control(ctx context.Context, cmd string, args []string) error {
	if len(args) != 1 {
		return errors.Errorf("usage: %s <id>", cmd)
	}
	id, err := s.lineID(args[0])
	if err != nil {
		return err
	}
	return s.engine.Dispatch(ctx, cart.Command{Action: shellActions[cmd], ProductID: id})
}

func (s *Shell) quantity(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: qty <id> <n>")
	}
	id, err := s.lineID(args[0])
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return errors.Errorf("quantity must be a number, got %q", args[1])
	}
	if n > cart.MaxQuantity {
		return errors.Errorf("usage: qty <id> <n>, n is at most %d", cart.MaxQuantity)
	}
	s.engine.UpdateQuantity(ctx, id, n)
	return nil
}

func (s *Shell) checkout(ctx context.Context, collector checkout.InfoCollector) error {
	receipt, err := s.flow.Checkout(ctx, collector)
	switch {
	case err == nil:
		s.log.WithField("order_id", receipt.OrderID).Debug("shell checkout done")
	case errors.Is(err, checkout.ErrCheckoutCancelled):
		fmt.Fprintln(s.out, "Checkout cancelled.")
	case errors.Is(err, checkout.ErrEmptyCart):
		// already announced
	default:
		s.log.WithError(err).Debug("shell checkout failed")
	}
	return nil
}

// lineID parses id and checks that the cart holds it.
func (s *Shell) lineID(arg string) (int, error) {
	id, err := parseID(arg)
	if err != nil {
		return 0, err
	}
	if s.engine.ItemQuantity(id) == 0 {
		return 0, errors.Errorf("product #%d is not in the cart", id)
	}
	return id, nil
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(strings.TrimPrefix(arg, "#"))
	if err != nil {
		return 0, errors.Errorf("product id must be a number, got %q", arg)
	}
	return id, nil
}

func readLines(ctx context.Context, r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}
