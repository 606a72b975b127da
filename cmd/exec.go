// Package cmd wires the storefront services into a small command-line
// client: browse events, buy tickets, manage resale listings.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"syscall"

	"github.com/shopspring/decimal"
	"golang.org/x/term"

	"ticketfront/config"
	"ticketfront/internal/api"
	"ticketfront/models"
	"ticketfront/services"
	"ticketfront/utils"
)

func usage() string {
	return `usage: ticketfront <command> [args]

  events [search]            list events, optionally filtered
  event <id>                 show one event with live availability
  buy <event-id>             purchase a primary ticket
  resales <event-id>         list resale offers for an event
  buy-resale <ticket-id>     purchase a resale ticket
  tickets [page]             list my tickets
  resell <ticket-id> <price> list a ticket for resale
  cancel-resale <ticket-id>  withdraw a resale listing
  login <email>              log in (password prompted)
  register <username> <email> create an account (password prompted)
  logout                     drop the stored session
  whoami                     show the authenticated user
`
}

func Execute() error {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage())
		return errors.New("missing command")
	}

	cfg := config.LoadConfig()

	var store utils.TokenStore
	if cfg.RedisURL != "" {
		client, err := utils.NewRedisClient(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer client.Close()
		store = utils.NewRedisTokenStore(client, "ticketfront:token")
	} else {
		store = utils.NewFileTokenStore(cfg.TokenPath)
	}

	apiCfg := &api.Config{
		BaseURL:       cfg.APIBaseURL,
		Timeout:       cfg.RequestTimeout,
		EnableMetrics: cfg.EnableMetrics,
	}
	session := services.NewSessionService(apiCfg, store)
	catalog := services.NewCatalogService(session.Client())
	inventory := services.NewInventoryService(session, catalog)
	resale := services.NewResaleService(session)

	ctx := context.Background()

	// Resolve a persisted token into a live session before any command
	// that needs auth. A dead token just leaves us logged out.
	if session.Token() != "" {
		if err := session.Restore(ctx); err != nil {
			slog.Warn("stored session expired, continuing logged out")
		}
	}

	command, args := os.Args[1], os.Args[2:]
	switch command {
	case "events":
		search := ""
		if len(args) > 0 {
			search = args[0]
		}
		return listEvents(ctx, catalog, search)

	case "event":
		id, err := intArg(args, 0, "event id")
		if err != nil {
			return err
		}
		return showEvent(ctx, catalog, id)

	case "buy":
		id, err := intArg(args, 0, "event id")
		if err != nil {
			return err
		}
		ticket, err := inventory.Purchase(ctx, id)
		if err != nil {
			return err
		}
		fmt.Printf("purchased ticket %d\n", ticket.TicketID)
		return nil

	case "resales":
		id, err := intArg(args, 0, "event id")
		if err != nil {
			return err
		}
		listings, err := inventory.ResaleListings(ctx, id)
		if err != nil {
			return err
		}
		if len(listings) == 0 {
			fmt.Println("no resale offers")
			return nil
		}
		for _, l := range listings {
			fmt.Printf("ticket %d  %.2f (was %.2f)  seller %s\n",
				l.TicketID, l.ResalePrice, l.OriginalPrice, l.Seller)
		}
		return nil

	case "buy-resale":
		id, err := intArg(args, 0, "ticket id")
		if err != nil {
			return err
		}
		ticket, err := inventory.PurchaseResale(ctx, id)
		if err != nil {
			return err
		}
		fmt.Printf("purchased resale ticket %d\n", ticket.TicketID)
		return nil

	case "tickets":
		page := 1
		if len(args) > 0 {
			if p, err := strconv.Atoi(args[0]); err == nil {
				page = p
			}
		}
		return listTickets(ctx, inventory, page)

	case "resell":
		id, err := intArg(args, 0, "ticket id")
		if err != nil {
			return err
		}
		if len(args) < 2 {
			return errors.New("missing price")
		}
		price, err := decimal.NewFromString(args[1])
		if err != nil {
			return fmt.Errorf("bad price %q", args[1])
		}
		if err := resale.ListForResale(ctx, id, price); err != nil {
			return err
		}
		fmt.Println("listed for resale")
		return nil

	case "cancel-resale":
		id, err := intArg(args, 0, "ticket id")
		if err != nil {
			return err
		}
		if err := resale.CancelResale(ctx, id); err != nil {
			return err
		}
		fmt.Println("resale cancelled")
		return nil

	case "login":
		if len(args) < 1 {
			return errors.New("missing email")
		}
		password, err := promptPassword()
		if err != nil {
			return err
		}
		user, err := session.Login(ctx, args[0], password)
		if err != nil {
			return err
		}
		fmt.Printf("logged in as %s\n", user.Username)
		return nil

	case "register":
		if len(args) < 2 {
			return errors.New("usage: register <username> <email>")
		}
		password, err := promptPassword()
		if err != nil {
			return err
		}
		user, err := session.Register(ctx, args[0], args[1], password)
		if err != nil {
			return err
		}
		fmt.Printf("registered as %s\n", user.Username)
		return nil

	case "logout":
		session.Logout()
		fmt.Println("logged out")
		return nil

	case "whoami":
		user := session.CurrentUser()
		if user == nil {
			fmt.Println("not logged in")
			return nil
		}
		fmt.Printf("%s <%s>\n", user.Username, user.Email)
		return nil

	default:
		fmt.Fprint(os.Stderr, usage())
		return fmt.Errorf("unknown command %q", command)
	}
}

func listEvents(ctx context.Context, catalog *services.CatalogService, search string) error {
	filter := models.EventFilter{Page: 1, Search: search}
	summaries, totalPages, err := catalog.ListWithAvailability(ctx, filter)
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Println("no events")
		return nil
	}
	for _, s := range summaries {
		avail := "?"
		if s.Availability != nil {
			avail = strconv.Itoa(*s.Availability)
		}
		fmt.Printf("%4d  %-30s  %-20s  %8.2f  %s left\n",
			s.Event.ID, s.Event.Name, s.Event.Location, s.Event.Price, avail)
	}
	fmt.Printf("page 1 of %d\n", totalPages)
	return nil
}

func showEvent(ctx context.Context, catalog *services.CatalogService, id int) error {
	event, err := catalog.GetEvent(ctx, id)
	if err != nil {
		return err
	}
	fmt.Printf("%s\n%s\n%s, %s\nprice %.2f\n",
		event.Name, event.Description, event.Location, event.Date.Format("2006-01-02 15:04"), event.Price)

	if n, err := catalog.Availability(ctx, id); err == nil {
		fmt.Printf("%d tickets available\n", n)
	}
	return nil
}

func listTickets(ctx context.Context, inventory *services.InventoryService, page int) error {
	reply, err := inventory.MyTickets(ctx, page)
	if err != nil {
		return err
	}
	if len(reply.Tickets) == 0 {
		fmt.Println("no tickets")
		return nil
	}
	for _, t := range reply.Tickets {
		line := fmt.Sprintf("%4d  %-30s  %s", t.TicketID, t.Event.Name, t.Status)
		if t.Status == models.TicketResale && t.ResalePrice != nil {
			line += fmt.Sprintf("  listed at %.2f", *t.ResalePrice)
		}
		fmt.Println(line)
	}
	fmt.Printf("page %d of %d\n", page, reply.TotalPages)
	return nil
}

func intArg(args []string, i int, name string) (int, error) {
	if len(args) <= i {
		return 0, fmt.Errorf("missing %s", name)
	}
	n, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, fmt.Errorf("bad %s %q", name, args[i])
	}
	return n, nil
}

func promptPassword() (string, error) {
	fmt.Fprint(os.Stderr, "password: ")
	data, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
