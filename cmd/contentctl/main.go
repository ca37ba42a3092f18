package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	contentstore "github.com/MoonrakerAI/dt-exotics-las-vegas-sub003"
	"github.com/MoonrakerAI/dt-exotics-las-vegas-sub003/kv"
	"github.com/MoonrakerAI/dt-exotics-las-vegas-sub003/utils"
	"github.com/ergochat/readline"
	"github.com/joho/godotenv"
)

var completer = readline.NewPrefixCompleter(
	readline.PcItem("help"),
	readline.PcItem("dump"),
	readline.PcItem("keys"),
	readline.PcItem("members"),
	readline.PcItem("show"),
	readline.PcItem("stats"),
	readline.PcItem("recount"),
	readline.PcItem("publish"),
	readline.PcItem("exit"),
	readline.PcItem("quit"),
)

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

const usage = `commands:
  dump [pattern]     dump raw records matching a glob (default *)
  keys [pattern]     list value keys matching a glob
  members <set>      list the members of an index set
  show <kind> <id>   print one raw record
  stats              blog aggregate counts
  recount            resync category/tag counters
  publish            run the scheduled-publish pass now
  exit | quit`

func main() {
	_ = godotenv.Load()

	dir := os.Getenv("DATA_DIR")
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}
	if dir == "" {
		fmt.Fprintln(os.Stderr, "usage: contentctl <data-dir>  (or set DATA_DIR)")
		os.Exit(1)
	}

	store, err := kv.OpenPebble(dir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	defer store.Close()

	log := utils.NewDefaultLogger(slog.LevelWarn)
	ix := contentstore.NewIndexer(store, log)
	blog := contentstore.NewBlog(store, ix, log)
	ctx := context.Background()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:              "contentstore> ",
		AutoComplete:        completer,
		InterruptPrompt:     "^C",
		EOFPrompt:           "exit",
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "help":
			fmt.Println(usage)
		case "dump":
			pattern := "*"
			if len(fields) > 1 {
				pattern = fields[1]
			}
			if err := contentstore.Dump(ctx, store, os.Stdout, pattern); err != nil {
				fmt.Fprintln(os.Stderr, err.Error())
			}
		case "keys":
			pattern := "*"
			if len(fields) > 1 {
				pattern = fields[1]
			}
			keys, err := store.Keys(ctx, pattern)
			if err != nil {
				fmt.Fprintln(os.Stderr, err.Error())
				continue
			}
			for _, k := range keys {
				fmt.Println(k)
			}
		case "members":
			if len(fields) < 2 {
				fmt.Println("members <set>")
				continue
			}
			if err := contentstore.DumpSet(ctx, store, os.Stdout, fields[1]); err != nil {
				fmt.Fprintln(os.Stderr, err.Error())
			}
		case "show":
			if len(fields) < 3 {
				fmt.Println("show <kind> <id>")
				continue
			}
			if err := contentstore.Dump(ctx, store, os.Stdout, fields[1]+":"+fields[2]); err != nil {
				fmt.Fprintln(os.Stderr, err.Error())
			}
		case "stats":
			stats, err := blog.Stats(ctx)
			if err != nil {
				fmt.Fprintln(os.Stderr, err.Error())
				continue
			}
			fmt.Printf("posts=%d drafts=%d scheduled=%d published=%d\n",
				stats.TotalPosts, stats.Drafts, stats.Scheduled, stats.Published)
		case "recount":
			if err := blog.UpdateCategoryCounts(ctx); err != nil {
				fmt.Fprintln(os.Stderr, err.Error())
				continue
			}
			if err := blog.UpdateTagCounts(ctx); err != nil {
				fmt.Fprintln(os.Stderr, err.Error())
				continue
			}
			fmt.Println("counts resynced")
		case "publish":
			result, err := blog.PublishScheduled(ctx, time.Now())
			if err != nil {
				fmt.Fprintln(os.Stderr, err.Error())
				continue
			}
			fmt.Printf("processed=%d failed=%v\n", result.Processed, result.Failed)
		case "exit", "quit":
			return
		default:
			fmt.Println(usage)
		}
	}
}
