// Command historydump prints the persisted chat history of a lanchat data
// directory as a table. It opens the store read-only, so it is safe to run
// against a live server's copy or a backup.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

const messagePrefix = "msg:"

type storedMessage struct {
	Seq    uint64    `json:"seq"`
	Author string    `json:"author"`
	Body   string    `json:"body"`
	At     time.Time `json:"at"`
}

func main() {
	dir := flag.String("dir", "", "path to the BadgerDB data directory")
	limit := flag.Int("limit", 0, "print at most N messages (0 = all)")
	flag.Parse()

	if *dir == "" {
		fmt.Fprintln(os.Stderr, "usage: historydump -dir <badger-dir> [-limit N]")
		os.Exit(2)
	}
	if err := dump(*dir, *limit); err != nil {
		fmt.Fprintf(os.Stderr, "historydump: %v\n", err)
		os.Exit(1)
	}
}

func dump(dir string, limit int) error {
	db, err := badger.Open(badger.DefaultOptions(dir).
		WithReadOnly(true).
		WithLoggingLevel(badger.ERROR))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	var messages []storedMessage
	err = db.View(func(txn *badger.Txn) error {
		prefix := []byte(messagePrefix)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(messages) == limit {
				break
			}
			err := it.Item().Value(func(val []byte) error {
				var msg storedMessage
				if err := json.Unmarshal(val, &msg); err != nil {
					return err
				}
				messages = append(messages, msg)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	color.Bold.Printf("Chat history (%d messages)\n", len(messages))
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Seq", "Time (UTC)", "Author", "Message"})
	for _, msg := range messages {
		table.Append([]string{
			strconv.FormatUint(msg.Seq, 10),
			msg.At.UTC().Format("2006-01-02 15:04:05"),
			msg.Author,
			msg.Body,
		})
	}
	table.Render()
	return nil
}
