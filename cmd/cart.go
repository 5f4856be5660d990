package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"reflect"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"farmstore.GO/config"
	"farmstore.GO/core/cache"
	"farmstore.GO/service/cart"
	"farmstore.GO/service/catalog"
	"farmstore.GO/service/remote"
	"farmstore.GO/service/storage"
)

var cartOption string

const cartTimeout = 30 * time.Second

// cartSession bundles a Store with what the CLI needs around it.
type cartSession struct {
	store      *cart.Store
	storage    storage.Storage
	sessionKey string
	catalog    *catalog.Service
}

// cartStorage is Redis when REDIS_ADDR answers, the cart directory otherwise.
// CART_STORAGE_DIR=:memory: keeps the cart in process memory.
func cartStorage(ctx context.Context) (storage.Storage, error) {
	config.InitRedis()
	if config.RedisClient != nil {
		if err := config.RedisClient.Ping(ctx).Err(); err == nil {
			return storage.NewRedisStorage(config.RedisClient, "farmstore:", 0), nil
		}
		fmt.Println("Redis configured but not reachable, using file storage.")
	}
	if config.AppConfig.CartStorageDir == ":memory:" {
		return storage.NewCacheStorage(cache.GetInstance()), nil
	}
	return storage.NewFileStorage(config.AppConfig.CartStorageDir)
}

// openCart restores the local cart and, when a customer session was saved,
// resumes it and pulls the server cart.
func openCart(ctx context.Context) (*cartSession, error) {
	st, err := cartStorage(ctx)
	if err != nil {
		return nil, err
	}
	rc := remoteConfig()
	key := config.AppConfig.CartStorageKey
	s := cart.NewStore(cart.Options{
		Storage:     st,
		StorageKey:  key,
		Persistence: remote.NewCartClient(rc, config.AppConfig.CryptKey),
		OnSyncError: func(op string, err error) {
			fmt.Printf("  [sync] %s: %v\n", op, err)
		},
	})
	cs := &cartSession{
		store:      s,
		storage:    st,
		sessionKey: key + ".session",
		catalog:    catalog.NewService(remote.NewCatalogClient(rc), nil, 0, nil),
	}
	if id, err := st.Load(ctx, cs.sessionKey); err == nil && len(id) > 0 {
		if err := s.Resume(string(id)); err != nil {
			s.Close()
			return nil, err
		}
		if err := s.Sync(ctx); err != nil {
			fmt.Printf("  [sync] %v\n", err)
		}
	} else if err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.Close()
		return nil, err
	}
	return cs, nil
}

func (cs *cartSession) print() {
	lines := cs.store.Lines()
	if sess := cs.store.Session(); sess.Authenticated() {
		fmt.Printf("Customer: %s\n", sess.CustomerID)
	} else {
		fmt.Println("Guest cart")
	}
	for _, l := range lines {
		unit := "x"
		if l.IsWeight() {
			unit = "kg"
		}
		opt := ""
		if l.OptionID != "" {
			opt = " (" + l.OptionID + ")"
		}
		fmt.Printf("  %-20s %8.2f %-2s @ %8.2f = %10.2f\n", l.ProductID+opt, l.Quantity, unit, l.UnitPrice, cart.LineTotal(l))
	}
	fmt.Printf("Items: %d  Total: %.2f\n", cs.store.Count(), cs.store.Total())
}

// withCart runs fn against the restored cart, then flushes and prints it.
// The store is closed before the process exits.
func withCart(fn func(ctx context.Context, cs *cartSession) error) {
	ctx, cancel := context.WithTimeout(context.Background(), cartTimeout)
	cs, err := openCart(ctx)
	if err != nil {
		cancel()
		fmt.Printf("Cart unavailable: %v\n", err)
		os.Exit(1)
	}
	code := runCart(ctx, cs, fn)
	cancel()
	if code != 0 {
		os.Exit(code)
	}
}

// runCart applies fn and closes the store, flushing queued server writes,
// before returning the exit code.
func runCart(ctx context.Context, cs *cartSession, fn func(ctx context.Context, cs *cartSession) error) int {
	defer cs.store.Close()
	if err := fn(ctx, cs); err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}
	if err := cs.store.Flush(ctx); err != nil {
		fmt.Printf("  [sync] %v\n", err)
	}
	cs.print()
	return 0
}

func parseQty(s string) (float64, error) {
	q, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("quantity %q: %w", s, err)
	}
	return q, nil
}

var cartShowCmd = &cobra.Command{
	Use:   "cart:show",
	Short: "Show the local cart",
	Run: func(cmd *cobra.Command, args []string) {
		withCart(func(context.Context, *cartSession) error { return nil })
	},
}

var cartAddCmd = &cobra.Command{
	Use:   "cart:add <productId> <quantity>",
	Short: "Add a product; quantity is kg for weight products",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		withCart(func(ctx context.Context, cs *cartSession) error {
			qty, err := parseQty(args[1])
			if err != nil {
				return err
			}
			p, err := cs.catalog.Product(ctx, args[0])
			if err != nil {
				return err
			}
			res := cs.store.Add(p, qty, cartOption)
			switch {
			case res.Line.ProductID == "":
				fmt.Println("Nothing added (invalid quantity or unavailable option).")
			case res.Clamped:
				fmt.Printf("Only %.2f available; quantity capped.\n", p.TotalStock)
			}
			return nil
		})
	},
}

var cartUpdateCmd = &cobra.Command{
	Use:   "cart:update <productId> <quantity>",
	Short: "Set a line's quantity; 0 removes it",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		withCart(func(ctx context.Context, cs *cartSession) error {
			qty, err := parseQty(args[1])
			if err != nil {
				return err
			}
			cs.store.UpdateQuantity(args[0], qty, cartOption)
			return nil
		})
	},
}

var cartRemoveCmd = &cobra.Command{
	Use:   "cart:remove <productId>",
	Short: "Remove a line",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withCart(func(ctx context.Context, cs *cartSession) error {
			cs.store.Remove(args[0], cartOption)
			return nil
		})
	},
}

var cartClearCmd = &cobra.Command{
	Use:   "cart:clear",
	Short: "Empty the cart (and the server cart when logged in)",
	Run: func(cmd *cobra.Command, args []string) {
		withCart(func(ctx context.Context, cs *cartSession) error {
			return cs.store.Clear(ctx)
		})
	},
}

var cartLoginCmd = &cobra.Command{
	Use:   "cart:login <customerId>",
	Short: "Merge the local cart into a customer's server cart",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withCart(func(ctx context.Context, cs *cartSession) error {
			if err := cs.store.Login(ctx, args[0]); err != nil {
				return err
			}
			return cs.storage.Save(ctx, cs.sessionKey, []byte(args[0]))
		})
	},
}

var cartLogoutCmd = &cobra.Command{
	Use:   "cart:logout",
	Short: "Turn the cart back into a guest cart",
	Run: func(cmd *cobra.Command, args []string) {
		withCart(func(ctx context.Context, cs *cartSession) error {
			cs.store.Logout()
			return cs.storage.Delete(ctx, cs.sessionKey)
		})
	},
}

var cartWatchCmd = &cobra.Command{
	Use:   "cart:watch",
	Short: "Keep the cart open and pull the server cart on CART_SYNC_SCHEDULE",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), cartTimeout)
		cs, err := openCart(ctx)
		cancel()
		if err != nil {
			fmt.Printf("Cart unavailable: %v\n", err)
			os.Exit(1)
		}
		if !cs.store.Session().Authenticated() {
			cs.store.Close()
			fmt.Println("Guest carts have nothing to sync; run cart:login first.")
			os.Exit(1)
		}
		c, err := cart.StartSync(cs.store, config.AppConfig.CartSyncSchedule)
		if err != nil {
			cs.store.Close()
			fmt.Printf("Sync schedule: %v\n", err)
			os.Exit(1)
		}
		defer cs.store.Close()
		defer c.Stop()
		cs.print()

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		last := cs.store.Lines()
		tick := time.NewTicker(time.Second)
		defer tick.Stop()
		for {
			select {
			case <-sig:
				return
			case <-tick.C:
				if lines := cs.store.Lines(); !reflect.DeepEqual(lines, last) {
					last = lines
					cs.print()
				}
			}
		}
	},
}

func init() {
	for _, c := range []*cobra.Command{cartAddCmd, cartUpdateCmd, cartRemoveCmd} {
		c.Flags().StringVarP(&cartOption, "option", "o", "", "Variant or size category id")
	}
	rootCmd.AddCommand(cartWatchCmd, cartShowCmd, cartAddCmd, cartUpdateCmd, cartRemoveCmd, cartClearCmd, cartLoginCmd, cartLogoutCmd)
}
