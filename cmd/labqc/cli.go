package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/labqc/internal/access"
	"github.com/vladislavdragonenkov/labqc/internal/app"
	"github.com/vladislavdragonenkov/labqc/internal/domain"
	"github.com/vladislavdragonenkov/labqc/internal/export"
	"github.com/vladislavdragonenkov/labqc/internal/validation"
	"github.com/vladislavdragonenkov/labqc/internal/version"
)

var errUnknownCommand = errors.New("unknown command")

// cli выполняет одну команду от имени оператора.
type cli struct {
	app      *app.App
	out      io.Writer
	username string
	password string
	session  *access.Session
}

func (c *cli) dispatch(ctx context.Context, args []string) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "serve":
		return c.app.Serve(ctx)
	case "version":
		_, err := fmt.Fprintln(c.out, version.String())
		return err
	case "passwd":
		return c.passwd(rest)
	case "clients":
		return c.sub(cmd, rest, map[string]func([]string) error{
			"add":    c.clientsAdd,
			"list":   c.clientsList,
			"search": c.clientsSearch,
		})
	case "services":
		return c.sub(cmd, rest, map[string]func([]string) error{
			"list":    c.servicesList,
			"add":     c.servicesAdd,
			"price":   c.servicesPrice,
			"enable":  c.servicesToggle(true),
			"disable": c.servicesToggle(false),
		})
	case "orders":
		return c.sub(cmd, rest, map[string]func([]string) error{
			"create": c.ordersCreate,
			"list":   c.ordersList,
			"show":   c.ordersShow,
			"status": c.ordersStatus,
		})
	case "report":
		return c.report(rest)
	default:
		return fmt.Errorf("%w: %s", errUnknownCommand, cmd)
	}
}

func (c *cli) sub(group string, args []string, handlers map[string]func([]string) error) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: %s requires a subcommand", errUnknownCommand, group)
	}
	handler, ok := handlers[args[0]]
	if !ok {
		return fmt.Errorf("%w: %s %s", errUnknownCommand, group, args[0])
	}
	return handler(args[1:])
}

// login выполняет вход один раз на процесс.
func (c *cli) login() (*access.Session, error) {
	if c.session != nil {
		return c.session, nil
	}
	session, err := c.app.Login(c.username, c.password)
	if err != nil {
		return nil, err
	}
	c.session = session
	return session, nil
}

func (c *cli) table() *tabwriter.Writer {
	return tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
}

func (c *cli) passwd(args []string) error {
	fs := flag.NewFlagSet("passwd", flag.ContinueOnError)
	next := fs.String("new", "", "new password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	session, err := c.login()
	if err != nil {
		return err
	}
	if err := session.ChangePassword(c.password, *next); err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.out, "password changed")
	return err
}

func (c *cli) clientsAdd(args []string) error {
	fs := flag.NewFlagSet("clients add", flag.ContinueOnError)
	var client domain.Client
	clientType := fs.String("type", string(domain.ClientTypeLegal), "legal|individual")
	fs.StringVar(&client.CompanyName, "company", "", "company name")
	fs.StringVar(&client.Address, "address", "", "legal address")
	fs.StringVar(&client.INN, "inn", "", "taxpayer number, 10 or 12 digits")
	fs.StringVar(&client.BankAccount, "account", "", "bank account, 20 digits")
	fs.StringVar(&client.BIK, "bik", "", "bank BIK, 9 digits")
	fs.StringVar(&client.DirectorName, "director", "", "director full name")
	fs.StringVar(&client.ContactPerson, "contact", "", "contact person")
	fs.StringVar(&client.FullName, "name", "", "individual full name")
	fs.StringVar(&client.BirthDate, "birth-date", "", "birth date "+validation.DateLayout)
	fs.StringVar(&client.PassportSeries, "passport-series", "", "passport series, 4 digits")
	fs.StringVar(&client.PassportNumber, "passport-number", "", "passport number, 6 digits")
	fs.StringVar(&client.Phone, "phone", "", "phone number")
	fs.StringVar(&client.Email, "email", "", "email")
	if err := fs.Parse(args); err != nil {
		return err
	}
	client.Type = domain.ClientType(*clientType)

	session, err := c.login()
	if err != nil {
		return err
	}
	id, err := c.app.Clients.Register(session, client)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.out, "client %d registered\n", id)
	return err
}

func (c *cli) clientsList(args []string) error {
	fs := flag.NewFlagSet("clients list", flag.ContinueOnError)
	clientType := fs.String("type", "", "filter by type: legal|individual")
	if err := fs.Parse(args); err != nil {
		return err
	}
	session, err := c.login()
	if err != nil {
		return err
	}
	list, err := c.app.Clients.List(session, domain.ClientType(*clientType))
	if err != nil {
		return err
	}
	return c.printClients(list)
}

func (c *cli) clientsSearch(args []string) error {
	fs := flag.NewFlagSet("clients search", flag.ContinueOnError)
	term := fs.String("q", "", "name, INN or phone fragment")
	clientType := fs.String("type", "", "filter by type: legal|individual")
	if err := fs.Parse(args); err != nil {
		return err
	}
	session, err := c.login()
	if err != nil {
		return err
	}
	list, err := c.app.Clients.Search(session, *term, domain.ClientType(*clientType))
	if err != nil {
		return err
	}
	return c.printClients(list)
}

func (c *cli) printClients(list []domain.Client) error {
	w := c.table()
	_, _ = fmt.Fprintln(w, "ID\tTYPE\tNAME\tCONTACTS")
	for _, client := range list {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", client.ID, client.Type.Label(), client.DisplayName(), client.ContactInfo())
	}
	return w.Flush()
}

func (c *cli) servicesList(_ []string) error {
	session, err := c.login()
	if err != nil {
		return err
	}
	list, err := c.app.Catalog.Active(session)
	if err != nil {
		return err
	}
	w := c.table()
	_, _ = fmt.Fprintln(w, "ID\tNAME\tPRICE")
	for _, svc := range list {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\n", svc.ID, svc.Name, svc.PriceDisplay())
	}
	return w.Flush()
}

func (c *cli) servicesAdd(args []string) error {
	fs := flag.NewFlagSet("services add", flag.ContinueOnError)
	name := fs.String("name", "", "service name")
	description := fs.String("desc", "", "description")
	price := fs.String("price", "", "price, e.g. 15000.00")
	if err := fs.Parse(args); err != nil {
		return err
	}
	amount, err := parsePrice(*price)
	if err != nil {
		return err
	}
	session, err := c.login()
	if err != nil {
		return err
	}
	id, err := c.app.Catalog.Create(session, *name, *description, amount)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.out, "service %d created\n", id)
	return err
}

func (c *cli) servicesPrice(args []string) error {
	fs := flag.NewFlagSet("services price", flag.ContinueOnError)
	id := fs.Int64("id", 0, "service id")
	price := fs.String("price", "", "new price")
	if err := fs.Parse(args); err != nil {
		return err
	}
	amount, err := parsePrice(*price)
	if err != nil {
		return err
	}
	session, err := c.login()
	if err != nil {
		return err
	}
	return c.app.Catalog.UpdatePrice(session, *id, amount)
}

func (c *cli) servicesToggle(active bool) func([]string) error {
	return func(args []string) error {
		fs := flag.NewFlagSet("services toggle", flag.ContinueOnError)
		id := fs.Int64("id", 0, "service id")
		if err := fs.Parse(args); err != nil {
			return err
		}
		session, err := c.login()
		if err != nil {
			return err
		}
		if active {
			return c.app.Catalog.Activate(session, *id)
		}
		return c.app.Catalog.Deactivate(session, *id)
	}
}

// serviceQty накапливает повторяемый флаг -service ID[:QTY].
type serviceQty []struct {
	id  int64
	qty int
}

func (s *serviceQty) String() string { return fmt.Sprint(len(*s)) }

func (s *serviceQty) Set(raw string) error {
	idPart, qtyPart, hasQty := strings.Cut(raw, ":")
	id, err := strconv.ParseInt(strings.TrimSpace(idPart), 10, 64)
	if err != nil {
		return fmt.Errorf("service id %q: %w", idPart, err)
	}
	qty := 1
	if hasQty {
		if qty, err = strconv.Atoi(strings.TrimSpace(qtyPart)); err != nil {
			return fmt.Errorf("service quantity %q: %w", qtyPart, err)
		}
	}
	*s = append(*s, struct {
		id  int64
		qty int
	}{id: id, qty: qty})
	return nil
}

func (c *cli) ordersCreate(args []string) error {
	fs := flag.NewFlagSet("orders create", flag.ContinueOnError)
	clientID := fs.Int64("client", 0, "client id")
	date := fs.String("date", "", "order date "+validation.DateLayout+" (default today)")
	code := fs.String("code", "", "vessel code (default next generated)")
	var items serviceQty
	fs.Var(&items, "service", "service ID[:QTY], repeatable")
	if err := fs.Parse(args); err != nil {
		return err
	}

	orderDate := time.Now()
	if *date != "" {
		parsed, err := parseDate(*date)
		if err != nil {
			return err
		}
		orderDate = parsed
	}

	session, err := c.login()
	if err != nil {
		return err
	}
	order, err := c.app.Orders.NewDraft(session, *clientID, orderDate)
	if err != nil {
		return err
	}
	if *code != "" {
		order.SetVesselCode(*code)
	}
	for _, item := range items {
		if err := c.app.Orders.AddService(order, item.id, item.qty); err != nil {
			return err
		}
	}

	id, err := c.app.Orders.Submit(session, order)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.out, "order %d created: vessel %s, total %s\n",
		id, order.VesselCode, domain.FormatMoney(order.TotalAmount()))
	return err
}

func (c *cli) ordersList(args []string) error {
	fs := flag.NewFlagSet("orders list", flag.ContinueOnError)
	status := fs.String("status", "", "filter by status")
	from := fs.String("from", "", "order date from "+validation.DateLayout)
	to := fs.String("to", "", "order date to "+validation.DateLayout)
	code := fs.String("code", "", "vessel code fragment")
	if err := fs.Parse(args); err != nil {
		return err
	}

	filter := domain.OrderFilter{VesselCode: *code}
	if *status != "" {
		parsed, err := domain.ParseOrderStatus(*status)
		if err != nil {
			return err
		}
		filter.Status = parsed
	}
	bounds := []struct {
		raw    string
		target **time.Time
	}{
		{raw: *from, target: &filter.DateFrom},
		{raw: *to, target: &filter.DateTo},
	}
	for _, b := range bounds {
		if b.raw == "" {
			continue
		}
		parsed, err := parseDate(b.raw)
		if err != nil {
			return err
		}
		*b.target = &parsed
	}

	session, err := c.login()
	if err != nil {
		return err
	}
	list, err := c.app.Orders.List(session, filter)
	if err != nil {
		return err
	}
	w := c.table()
	_, _ = fmt.Fprintln(w, "ID\tVESSEL\tDATE\tCLIENT\tSTATUS\tTOTAL\tCREATED BY")
	for _, o := range list {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n", o.ID, o.VesselCode,
			o.OrderDate.Format(validation.DateLayout), o.ClientName, o.Status.Label(),
			domain.FormatMoney(o.TotalAmount), o.CreatedByName)
	}
	return w.Flush()
}

func (c *cli) ordersShow(args []string) error {
	fs := flag.NewFlagSet("orders show", flag.ContinueOnError)
	id := fs.Int64("id", 0, "order id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	session, err := c.login()
	if err != nil {
		return err
	}
	order, err := c.app.Orders.Details(session, *id)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(c.out, "order %d, vessel %s, %s\nclient: %s\ndate: %s\n\n",
		order.ID, order.VesselCode, order.Status.Label(), order.ClientName,
		order.OrderDate.Format(validation.DateLayout))
	w := c.table()
	_, _ = fmt.Fprintln(w, "SERVICE\tQTY\tPRICE\tSUM")
	for _, item := range order.Items() {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", item.ServiceName, item.Quantity,
			domain.FormatMoney(item.UnitPrice), domain.FormatMoney(item.TotalPrice()))
	}
	_, _ = fmt.Fprintf(w, "\t\tTOTAL\t%s\n", domain.FormatMoney(order.TotalAmount()))
	return w.Flush()
}

func (c *cli) ordersStatus(args []string) error {
	fs := flag.NewFlagSet("orders status", flag.ContinueOnError)
	id := fs.Int64("id", 0, "order id")
	status := fs.String("status", "", "new status: new|in_progress|completed|cancelled")
	if err := fs.Parse(args); err != nil {
		return err
	}
	parsed, err := domain.ParseOrderStatus(*status)
	if err != nil {
		return err
	}
	session, err := c.login()
	if err != nil {
		return err
	}
	if err := c.app.Orders.ChangeStatus(session, *id, parsed); err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.out, "order %d is now %s\n", *id, parsed.Label())
	return err
}

func (c *cli) report(args []string) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	from := fs.String("from", "", "period start "+validation.DateLayout)
	to := fs.String("to", "", "period end "+validation.DateLayout)
	format := fs.String("format", string(export.FormatCSV), "csv|xlsx")
	out := fs.String("out", "", "output file (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	fromDate, err := parseDate(*from)
	if err != nil {
		return err
	}
	toDate, err := parseDate(*to)
	if err != nil {
		return err
	}

	session, err := c.login()
	if err != nil {
		return err
	}
	rep, err := c.app.Reports.Generate(session, fromDate, toDate)
	if err != nil {
		return err
	}

	w := c.out
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			return fmt.Errorf("create report file: %w", err)
		}
		defer f.Close()
		w = f
	}
	return c.app.Reports.Export(session, rep, export.ParseFormat(*format), w)
}

func parseDate(raw string) (time.Time, error) {
	if err := validation.Required(raw, "date"); err != nil {
		return time.Time{}, err
	}
	if err := validation.Date(raw); err != nil {
		return time.Time{}, err
	}
	return time.Parse(validation.DateLayout, raw)
}

func parsePrice(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, &validation.Error{Field: "price", Message: "price must be a number"}
	}
	return amount, nil
}
