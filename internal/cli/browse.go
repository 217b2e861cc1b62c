package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/lobstergraph/lobstergraph/internal/config"
	"github.com/lobstergraph/lobstergraph/pkg/tree"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// Sort orders for the browser.
const (
	sortByKarma = iota
	sortByInvites
	sortBySubtree
)

var sortNames = []string{"karma", "invites", "subtree"}

// =============================================================================
// UserListModel - Interactive user browser
// =============================================================================

// userRow is one entry of the browser list.
type userRow struct {
	Key          string
	Karma        int
	InviteCount  int
	SubtreeSize  int
	SubtreeKarma int
	Depth        int
	InvitedBy    string
}

// UserListModel is the bubbletea model for browsing users of the invite tree.
type UserListModel struct {
	Users    []userRow
	Cursor   int
	Height   int
	Offset   int
	SortMode int
	Detail   bool
}

// NewUserListModel builds the browser model from a tree index, sorted by
// karma descending.
func NewUserListModel(idx *tree.Index) UserListModel {
	keys := idx.Keys()
	users := make([]userRow, 0, len(keys))
	for _, key := range keys {
		depth, _ := idx.Depth(key)
		row := userRow{
			Key:          key,
			Karma:        idx.Karma(key),
			InviteCount:  idx.InviteCount(key),
			SubtreeSize:  idx.SubtreeSize(key),
			SubtreeKarma: idx.SubtreeKarma(key),
			Depth:        depth,
		}
		if parent, ok := idx.Parent(key); ok {
			row.InvitedBy = parent
		}
		users = append(users, row)
	}

	m := UserListModel{Users: users, Height: 15}
	m.sortUsers()
	return m
}

func (m *UserListModel) sortUsers() {
	less := func(a, b userRow) bool { return a.Karma > b.Karma }
	switch m.SortMode {
	case sortByInvites:
		less = func(a, b userRow) bool { return a.InviteCount > b.InviteCount }
	case sortBySubtree:
		less = func(a, b userRow) bool { return a.SubtreeSize > b.SubtreeSize }
	}
	sort.SliceStable(m.Users, func(i, j int) bool {
		a, b := m.Users[i], m.Users[j]
		if less(a, b) {
			return true
		}
		if less(b, a) {
			return false
		}
		return a.Key < b.Key
	})
}

func (m UserListModel) Init() tea.Cmd {
	return nil
}

func (m UserListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.Detail {
				m.Detail = false
				return m, nil
			}
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Users)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "s":
			m.SortMode = (m.SortMode + 1) % len(sortNames)
			m.sortUsers()
			m.Cursor = 0
			m.Offset = 0
		case "enter":
			m.Detail = !m.Detail
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m UserListModel) View() string {
	if m.Detail && m.Cursor < len(m.Users) {
		return m.detailView()
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render("Browse Users"))
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  sorted by %s", sortNames[m.SortMode])))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ detail  s sort  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Users) {
		end = len(m.Users)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		u := m.Users[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			u.Key,
			strconv.Itoa(u.Karma),
			strconv.Itoa(u.InviteCount),
			strconv.Itoa(u.SubtreeSize),
			strconv.Itoa(u.Depth),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "User", "Karma", "Invites", "Subtree", "Depth").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return listSelectedStyle
			}
			return listNormalStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("%d/%d users", m.Cursor+1, len(m.Users))))
	return b.String()
}

func (m UserListModel) detailView() string {
	u := m.Users[m.Cursor]

	var b strings.Builder
	b.WriteString(StyleTitle.Render(u.Key))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("⏎/esc back  q quit"))
	b.WriteString("\n\n")

	line := func(key, value string) {
		keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(14)
		b.WriteString(keyStyle.Render(key) + " " + StyleValue.Render(value) + "\n")
	}
	line("karma", strconv.Itoa(u.Karma))
	line("invited by", orDash(u.InvitedBy))
	line("invites", strconv.Itoa(u.InviteCount))
	line("subtree size", strconv.Itoa(u.SubtreeSize))
	line("subtree karma", strconv.Itoa(u.SubtreeKarma))
	line("depth", strconv.Itoa(u.Depth))
	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

// =============================================================================
// Command
// =============================================================================

// browseCommand creates the browse command, an interactive terminal browser
// for the invite tree.
func (c *CLI) browseCommand() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse users of the invitation graph interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			opts, err := c.pipelineOptions(cfg, false)
			if err != nil {
				return err
			}
			runner, _, err := c.newRunner(ctx, cfg, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			d, err := runner.Load(ctx, opts)
			if err != nil {
				return err
			}
			idx, err := tree.Build(d, opts.Founder)
			if err != nil {
				return err
			}

			p := tea.NewProgram(NewUserListModel(idx), tea.WithContext(ctx))
			_, err = p.Run()
			return err
		},
	}

	addSourceFlags(cmd)
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the layout cache entirely")
	return cmd
}
