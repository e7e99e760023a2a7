package tinker

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"soma/internal/formatting"
	"soma/pkg/store"
)

func (s *Shell) storeCommand(noun string, st func() *store.Store) func([]string) error {
	return func(args []string) error {
		data := st()
		if len(args) == 0 {
			formatting.KeyValues(s.out, formatting.Options{}, data.Flatten())
			return nil
		}
		if !data.Exists(args[0]) {
			return fmt.Errorf("%s %q is not set", noun, args[0])
		}
		fmt.Fprintln(s.out, formatting.Value(data.Get(args[0], nil)))
		return nil
	}
}

func (s *Shell) providers([]string) error {
	infos := s.host.Providers()
	if len(infos) == 0 {
		fmt.Fprintln(s.out, "No providers registered")
		return nil
	}

	rows := make([][]string, 0, len(infos))
	for _, p := range infos {
		rows = append(rows, []string{
			p.ID,
			p.Type,
			strconv.FormatBool(p.Loaded),
			strconv.FormatBool(p.Tracked),
			strings.Join(p.Capabilities, ","),
		})
	}
	formatting.Rows(s.out, formatting.Options{}, []string{"ID", "Type", "Loaded", "Tracked", "Capabilities"}, rows)
	return nil
}

func (s *Shell) get(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: get <id>")
	}
	v, err := s.host.Get(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%T\n%s\n", v, formatting.Value(v))
	return nil
}

func (s *Shell) help([]string) error {
	names := make([]string, 0, len(s.commands))
	for name := range s.commands {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		rows = append(rows, []string{s.commands[name].usage, s.commands[name].description})
	}
	formatting.Rows(s.out, formatting.Options{NoHeaders: true}, []string{"Command", "Description"}, rows)
	return nil
}
