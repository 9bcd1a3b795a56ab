package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"bizdir/internal/domain"
	"bizdir/internal/likecache"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var (
	likesUser  string
	cacheRedis string
	cacheFile  string
)

// likesCmd groups like operations
var likesCmd = &cobra.Command{
	Use:   "likes",
	Short: "Inspect and toggle likes",
}

var likesToggleCmd = &cobra.Command{
	Use:   "toggle <businessId>",
	Short: "Like or unlike a business as --user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		res, err := newClient().ToggleLike(ctx, likesUser, args[0])
		if err != nil {
			return err
		}

		cache, closeStore := openCache()
		defer closeStore()
		if _, err := cache.Restore(ctx); err != nil {
			return err
		}
		cache.ApplyToggleResult(ctx, args[0], res.Liked, res.Count)

		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (count=%d)\n", args[0], res.Action, res.Count)
		return nil
	},
}

var likesStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the like status of every business for --user",
	Long: `Refresh the local like cache when it is older than an hour and print it.

The cache lives in redis (--redis) or a file (--cache-file) so repeated
calls within the hour do not hit the server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		cache, closeStore := openCache()
		defer closeStore()

		if _, err := cache.Restore(ctx); err != nil {
			return err
		}
		refreshed, err := cache.RefreshAll(ctx, likesUser)
		if err != nil {
			return err
		}

		c := newClient()
		businesses, err := c.ListBusinesses(ctx, "", "")
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTITLE\tLIKED\tCOUNT")
		for _, b := range businesses {
			st := cache.Status(b.ID)
			fmt.Fprintf(tw, "%s\t%s\t%t\t%d\n", b.ID, b.Title, st.Liked, st.Count)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "refreshed=%t lastFetch=%s\n", refreshed, cache.LastFetch().Format("2006-01-02 15:04:05"))
		return nil
	},
}

var likesWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow live like changes until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cache, closeStore := openCache()
		defer closeStore()

		if _, err := cache.Restore(ctx); err != nil {
			return err
		}
		if _, err := cache.RefreshAll(ctx, likesUser); err != nil {
			return err
		}

		events := make(chan domain.LikeEvent, 16)
		errc := make(chan error, 1)
		go func() { errc <- newClient().SubscribeLikes(ctx, events) }()

		out := cmd.OutOrStdout()
		for ev := range events {
			cache.Apply(ctx, ev)
			st := cache.Status(ev.BusinessID)
			fmt.Fprintf(out, "%s: count=%d (mine: liked=%t)\n", ev.BusinessID, ev.Count, st.Liked)
		}

		if err := <-errc; err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

var likesClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop the local like cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		cache, closeStore := openCache()
		defer closeStore()
		return cache.Clear(ctx)
	},
}

func openCache() (*likecache.Cache, func()) {
	opts := []likecache.Option{}
	closeStore := func() {}

	switch {
	case cacheRedis != "":
		rdb := redis.NewClient(&redis.Options{Addr: cacheRedis})
		opts = append(opts, likecache.WithStore(likecache.NewRedisStore(rdb, likecache.SnapshotKey+":"+likesUser)))
		closeStore = func() { _ = rdb.Close() }
	case cacheFile != "":
		opts = append(opts, likecache.WithStore(likecache.NewFileStore(cacheFile)))
	}

	return likecache.New(newClient(), opts...), closeStore
}

func init() {
	likesCmd.PersistentFlags().StringVarP(&likesUser, "user", "u", "", "User id the likes belong to")
	likesCmd.PersistentFlags().StringVar(&cacheRedis, "redis", "", "Redis address for the like cache")
	likesCmd.PersistentFlags().StringVar(&cacheFile, "cache-file", "", "File path for the like cache")
	_ = likesCmd.MarkPersistentFlagRequired("user")

	likesCmd.AddCommand(likesToggleCmd, likesStatusCmd, likesWatchCmd, likesClearCmd)
}
