package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/recall-project/recall/pkg/color"
	"github.com/recall-project/recall/pkg/config"
	"github.com/recall-project/recall/pkg/model"
	"github.com/recall-project/recall/pkg/recall"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Open an interactive history session",
	Long: `Open an interactive session against a fresh in-memory document.

Commands inside the shell:
  add <kind> <name...>        Commit a new record
  edit <id> <name...>         Rename a record (id may be a unique prefix)
  delete <id>                 Delete a record (asks for confirmation)
  list [kind]                 List records
  search <query> [kind]       Fuzzy-search records
  undo / redo                 Global linear undo / redo
  history                     Show undo and redo stacks
  timeline [kind]             Show the audit timeline grouped by day
  types                       List entity types seen on the timeline
  undo-event <id>             Selectively undo one timeline event
  redo-event <id>             Selectively redo one timeline event
  export [path]               Export the timeline as hash-chained JSONL
  clear                       Clear the timeline (asks for confirmation)
  quit                        Close the session and exit`,
}

func init() {
	replCmd.Run = func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			fmtErr("load config: %v", err)
			os.Exit(1)
		}
		sh := newShell(cfg, os.Stdin, os.Stdout)
		sh.run()
	}
	rootCmd.AddCommand(replCmd)
}

// shell drives one interactive session. Input and output are injected
// so tests can script it.
type shell struct {
	session *recall.Session
	in      *bufio.Scanner
	out     io.Writer
}

func newShell(cfg *config.Config, in io.Reader, out io.Writer) *shell {
	return &shell{
		session: recall.Open(cfg),
		in:      bufio.NewScanner(in),
		out:     out,
	}
}

func (sh *shell) run() {
	fmt.Fprintln(sh.out, color.Header("recall session opened")+color.Dim(" (type 'help' for commands)"))
	for {
		fmt.Fprint(sh.out, color.Dim("recall> "))
		if !sh.in.Scan() {
			break
		}
		line := strings.TrimSpace(sh.in.Text())
		if line == "" {
			continue
		}
		if !sh.dispatch(line) {
			break
		}
	}
	sh.session.Close()
	fmt.Fprintln(sh.out, color.Dim("session closed"))
}

// dispatch executes one shell command; returns false to exit.
func (sh *shell) dispatch(line string) bool {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "quit", "exit":
		return false
	case "help":
		fmt.Fprintln(sh.out, replCmd.Long)
	case "add":
		sh.cmdAdd(args)
	case "edit":
		sh.cmdEdit(args)
	case "delete":
		sh.cmdDelete(args)
	case "list":
		sh.cmdList(args)
	case "search":
		sh.cmdSearch(args)
	case "undo":
		if !sh.session.Undo() {
			fmt.Fprintln(sh.out, "Nothing to undo.")
		} else {
			fmt.Fprintln(sh.out, color.Success("Undone."))
		}
	case "redo":
		if !sh.session.Redo() {
			fmt.Fprintln(sh.out, "Nothing to redo.")
		} else {
			fmt.Fprintln(sh.out, color.Success("Redone."))
		}
	case "history":
		sh.cmdHistory()
	case "timeline":
		sh.cmdTimeline(args)
	case "types":
		for _, et := range sh.session.EntityTypes() {
			fmt.Fprintln(sh.out, color.Entity(et))
		}
	case "undo-event":
		sh.cmdUndoEvent(args)
	case "redo-event":
		sh.cmdRedoEvent(args)
	case "export":
		sh.cmdExport(args)
	case "clear":
		if sh.confirm(fmt.Sprintf("Discard all %d timeline events?", sh.session.EventCount())) {
			sh.session.ClearTimeline()
			fmt.Fprintln(sh.out, "Timeline cleared.")
		}
	default:
		fmt.Fprintln(sh.out, color.Errorf("unknown command %q", cmd))
		fmt.Fprintln(sh.out, color.Dim("  Type "+color.Code("help")+" for the command list."))
	}
	return true
}

func (sh *shell) cmdAdd(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(sh.out, "Usage: add <kind> <name...>")
		return
	}
	rec, err := sh.session.AddRecord(args[0], strings.Join(args[1:], " "), "")
	if err != nil {
		fmt.Fprintln(sh.out, color.Errorf("add: %v", err))
		return
	}
	fmt.Fprintf(sh.out, "%s %s %s\n",
		color.Success("Added"), color.Entity(rec.Kind), rec.Name)
	fmt.Fprintln(sh.out, color.Dim("  id "+string(rec.ID)))
}

func (sh *shell) cmdEdit(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(sh.out, "Usage: edit <id> <name...>")
		return
	}
	rec, ok := sh.findRecord(args[0])
	if !ok {
		return
	}
	updated, err := sh.session.EditRecord(rec.ID, strings.Join(args[1:], " "), rec.Notes)
	if err != nil {
		fmt.Fprintln(sh.out, color.Errorf("edit: %v", err))
		return
	}
	fmt.Fprintf(sh.out, "%s %q to %q\n", color.Success("Renamed"), rec.Name, updated.Name)
}

func (sh *shell) cmdDelete(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(sh.out, "Usage: delete <id>")
		return
	}
	rec, ok := sh.findRecord(args[0])
	if !ok {
		return
	}
	done, err := sh.session.DeleteRecordConfirmed(func() bool {
		return sh.confirm(fmt.Sprintf("Delete %s %q?", rec.Kind, rec.Name))
	}, rec.ID)
	if err != nil {
		fmt.Fprintln(sh.out, color.Errorf("delete: %v", err))
		return
	}
	if done {
		fmt.Fprintf(sh.out, "%s %s %q\n", color.Success("Deleted"), color.Entity(rec.Kind), rec.Name)
	}
}

func (sh *shell) cmdList(args []string) {
	kind := ""
	if len(args) > 0 {
		kind = args[0]
	}
	records := sh.session.SearchRecords("", kind)
	if len(records) == 0 {
		fmt.Fprintln(sh.out, "No records.")
		return
	}
	for _, r := range records {
		sh.printRecord(r)
	}
}

func (sh *shell) cmdSearch(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(sh.out, "Usage: search <query> [kind]")
		return
	}
	kind := ""
	if len(args) > 1 {
		kind = args[1]
	}
	records := sh.session.SearchRecords(args[0], kind)
	if len(records) == 0 {
		fmt.Fprintln(sh.out, "No matches.")
		return
	}
	for _, r := range records {
		sh.printRecord(r)
	}
}

func (sh *shell) cmdHistory() {
	limit := sh.session.Config().History.DisplayLimit

	undo := capped(sh.session.UndoHistory(), limit)
	redo := capped(sh.session.RedoHistory(), limit)

	fmt.Fprintln(sh.out, color.Header("Undo stack (most recent first):"))
	if len(undo) == 0 {
		fmt.Fprintln(sh.out, color.Dim("  (empty)"))
	}
	for _, d := range undo {
		fmt.Fprintln(sh.out, "  "+d)
	}
	fmt.Fprintln(sh.out, color.Header("Redo stack (most recent first):"))
	if len(redo) == 0 {
		fmt.Fprintln(sh.out, color.Dim("  (empty)"))
	}
	for _, d := range redo {
		fmt.Fprintln(sh.out, "  "+d)
	}
}

func (sh *shell) cmdTimeline(args []string) {
	entityType := ""
	if len(args) > 0 {
		entityType = args[0]
	}
	events := sh.session.FilteredEvents("", entityType)
	if len(events) == 0 {
		fmt.Fprintln(sh.out, "No events.")
		return
	}

	for _, group := range sh.session.GroupedTimeline() {
		printed := false
		for _, e := range group.Events {
			if entityType != "" && e.EntityType != entityType {
				continue
			}
			if !printed {
				fmt.Fprintln(sh.out, color.Header(group.Day.Format("Mon 2006-01-02")))
				printed = true
			}
			sh.printEvent(e)
		}
	}
}

func (sh *shell) cmdUndoEvent(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(sh.out, "Usage: undo-event <id>")
		return
	}
	e, ok := sh.findEvent(args[0])
	if !ok {
		return
	}
	done, err := sh.session.UndoEvent(e.ID)
	if err != nil {
		fmt.Fprintln(sh.out, color.Errorf("undo-event: %v", err))
		return
	}
	if !done {
		fmt.Fprintln(sh.out, color.Warning("Event cannot be undone right now."))
		return
	}
	fmt.Fprintf(sh.out, "%s %s\n", color.Success("Undone:"), e.Description)
}

func (sh *shell) cmdRedoEvent(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(sh.out, "Usage: redo-event <id>")
		return
	}
	e, ok := sh.findEvent(args[0])
	if !ok {
		return
	}
	done, err := sh.session.RedoEvent(e.ID)
	if err != nil {
		fmt.Fprintln(sh.out, color.Errorf("redo-event: %v", err))
		return
	}
	if !done {
		fmt.Fprintln(sh.out, color.Warning("Event is not undone; nothing to redo."))
		return
	}
	fmt.Fprintf(sh.out, "%s %s\n", color.Success("Redone:"), e.Description)
}

func (sh *shell) cmdExport(args []string) {
	path := ""
	if len(args) > 0 {
		path = args[0]
	}
	if err := sh.session.ExportTimeline(path); err != nil {
		fmt.Fprintln(sh.out, color.Errorf("export: %v", err))
		return
	}
	if path == "" {
		path = sh.session.Config().Export.Path
	}
	fmt.Fprintf(sh.out, "%s %d events to %s\n",
		color.Success("Exported"), sh.session.EventCount(), path)
}

// confirm asks a y/N question on the shell's own input stream.
func (sh *shell) confirm(question string) bool {
	fmt.Fprintf(sh.out, "%s [y/N] ", question)
	if !sh.in.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(sh.in.Text()))
	return answer == "y" || answer == "yes"
}

func (sh *shell) printRecord(r *model.Record) {
	fmt.Fprintf(sh.out, "%s  %s  %s\n",
		color.EventID(shortID(string(r.ID))),
		color.Entity(r.Kind),
		r.Name)
	if r.Notes != "" {
		fmt.Fprintln(sh.out, color.Dim("    "+r.Notes))
	}
}

func (sh *shell) printEvent(e *model.AuditEvent) {
	marker := " "
	if e.IsUndone {
		marker = color.Undone("u")
	}
	desc := e.Description
	if e.IsUndone {
		desc = color.Undone(desc)
	}
	fmt.Fprintf(sh.out, "  %s %s  %s  %s %s\n",
		marker,
		color.EventID(e.ID.ShortID()),
		color.Dim(e.Timestamp.Format("15:04:05")),
		color.Kind(string(e.Kind)),
		desc)
}

func capped(items []string, limit int) []string {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
