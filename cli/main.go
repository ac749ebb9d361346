package main

import (
	"context"
	"encoding/base64"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"equipcert/internal/capture"
	"equipcert/internal/checklist"
	"equipcert/internal/models"
)

// Styling
var (
	docStyle = lipgloss.NewStyle().Margin(1, 2)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#0a84ff")).
			Padding(0, 1)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#30d158")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#ff453a")).
			Padding(0, 1)

	cursorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4"))

	passStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#30d158"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff453a"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8e8e93"))
)

var (
	photoPath = flag.String("photo", "", "Path to the equipment photo to capture")
	inspector = flag.String("inspector", "Technician", "Inspector name recorded on submissions")
	equipment = flag.String("equipment", "", "Equipment name for manual inspections")
)

// Model defines the application state
type Model struct {
	mainMenu      list.Model
	dashboardView table.Model
	spinner       spinner.Model
	client        *ApiClient

	session    *checklist.Session
	controller *capture.Controller
	cursor     int
	result     *SubmitResult
	stats      *Stats

	currentView string
	loading     bool
	error       string
}

// item represents a list item
type item struct {
	title, desc string
}

// FilterValue implements list.Item interface
func (i item) FilterValue() string { return i.title }

// Title implements list.Item interface
func (i item) Title() string { return i.title }

// Description implements list.Item interface
func (i item) Description() string { return i.desc }

// Initialize the model
func initialModel() Model {
	// Initialize spinner
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	// Initialize main menu items
	items := []list.Item{
		item{title: "New Inspection (AI)", desc: "Photograph equipment and identify it automatically"},
		item{title: "New Inspection (Manual)", desc: "Inspect the equipment named with -equipment"},
		item{title: "Dashboard", desc: "View inspection records and safety statistics"},
		item{title: "Exit", desc: "Exit the application"},
	}

	// Initialize main menu
	mainMenu := list.New(items, list.NewDefaultDelegate(), 0, 0)
	mainMenu.Title = "EquipCert CLI"

	// Initialize dashboard table
	columns := []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Equipment", Width: 24},
		{Title: "Inspector", Width: 16},
		{Title: "Status", Width: 16},
		{Title: "Date", Width: 20},
	}
	dashboard := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	// Initialize API client
	client := NewApiClient()

	return Model{
		mainMenu:      mainMenu,
		dashboardView: dashboard,
		spinner:       s,
		client:        client,
		currentView:   "main",
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tea.EnterAltScreen)
}

// startSession builds a fresh inspection session and capture controller
func (m *Model) startSession(mode models.InspectionMode) {
	m.session = checklist.NewSession(*inspector, mode)
	m.controller = capture.NewController(
		m.session,
		apiIdentifier{client: m.client},
		apiChecklists{client: m.client},
	)
	m.cursor = 0
	m.result = nil
	m.error = ""

	if mode == models.ModeManual {
		m.session.EquipmentName = *equipment
	}
}

// Update handles UI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.loading {
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			return m, nil
		}
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if m.currentView == "main" {
				return m, tea.Quit
			}
		case "enter":
			switch m.currentView {
			case "main":
				selected, ok := m.mainMenu.SelectedItem().(item)
				if ok {
					switch selected.title {
					case "Exit":
						return m, tea.Quit
					case "New Inspection (AI)":
						m.startSession(models.ModeAIAssisted)
						m.currentView = "inspection"
					case "New Inspection (Manual)":
						if *equipment == "" {
							m.error = "Manual mode needs -equipment <name> on the command line"
							return m, nil
						}
						m.startSession(models.ModeManual)
						m.currentView = "inspection"
						m.loading = true
						return m, fetchChecklist(m.client, *equipment)
					case "Dashboard":
						m.currentView = "dashboard"
						m.loading = true
						return m, fetchDashboard(m.client)
					}
				}
			case "inspection":
				if m.session.AllCompleted() {
					m.loading = true
					return m, submitInspection(m.client, m.session)
				}
				m.error = "Complete every checklist item before submitting"
			case "complete":
				m.currentView = "main"
			}
		case "esc":
			switch m.currentView {
			case "inspection":
				m.controller.Abandon()
				m.session = nil
				m.controller = nil
				m.currentView = "main"
			case "dashboard", "complete":
				m.currentView = "main"
			}
		case "s":
			if m.currentView == "inspection" && m.controller.State() == capture.StateNoPhoto {
				if *photoPath == "" {
					m.error = "No photo available; pass -photo <path> on the command line"
					return m, nil
				}
				m.loading = true
				m.error = ""
				return m, capturePhoto(m.controller, *photoPath)
			}
		case "r":
			if m.currentView == "inspection" && m.controller.State() == capture.StatePhotoCaptured {
				m.controller.Retake()
				m.cursor = 0
				m.error = ""
			}
		case "up", "k":
			if m.currentView == "inspection" && m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.currentView == "inspection" && m.cursor < len(m.session.Items())-1 {
				m.cursor++
			}
		case "p", "f":
			if m.currentView == "inspection" {
				items := m.session.Items()
				if m.cursor < len(items) {
					status := models.ItemStatusPass
					if msg.String() == "f" {
						status = models.ItemStatusFail
					}
					if err := m.session.Mark(items[m.cursor].ID, status); err != nil {
						m.error = err.Error()
					} else {
						m.error = ""
					}
				}
			}
		}
	case captureDoneMsg:
		m.loading = false
		if msg.err != "" {
			m.error = msg.err
		}
		return m, nil
	case checklistMsg:
		m.loading = false
		if m.session != nil {
			m.session.LoadItems(msg.items)
		}
		return m, nil
	case submittedMsg:
		m.loading = false
		m.result = &msg.result
		m.currentView = "complete"
		return m, nil
	case dashboardMsg:
		m.loading = false
		m.stats = &msg.stats
		m.dashboardView.SetRows(convertInspectionsToRows(msg.rows))
		return m, nil
	case errorMsg:
		m.loading = false
		m.error = msg.err
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.mainMenu.SetSize(msg.Width-h, msg.Height-v)
	}

	var cmd tea.Cmd
	switch m.currentView {
	case "main":
		m.mainMenu, cmd = m.mainMenu.Update(msg)
	case "dashboard":
		m.dashboardView, cmd = m.dashboardView.Update(msg)
	}

	return m, cmd
}

// View renders the UI
func (m Model) View() string {
	switch m.currentView {
	case "main":
		view := m.mainMenu.View()
		if m.error != "" {
			view += "\n" + errorStyle.Render(m.error)
		}
		return docStyle.Render(view)
	case "inspection":
		return docStyle.Render(m.inspectionView())
	case "complete":
		return docStyle.Render(m.completeView())
	case "dashboard":
		return docStyle.Render(m.dashboardViewContent())
	default:
		return "Loading..."
	}
}

// inspectionView renders the capture state and checklist for the
// in-progress inspection
func (m Model) inspectionView() string {
	view := titleStyle.Render("Equipment Inspection") + "\n\n"

	if m.loading {
		view += m.spinner.View() + " Identifying equipment...\n"
		return view
	}

	if m.controller.State() == capture.StateNoPhoto {
		view += "No photo captured.\n\n"
		if m.session.Mode == models.ModeAIAssisted {
			view += "Press 's' to scan the equipment photo.\n"
		} else {
			view += fmt.Sprintf("Equipment: %s\n", m.session.EquipmentName)
			view += "Press 's' to attach the equipment photo, or work without one.\n"
		}
	} else {
		view += "Photo captured. Press 'r' to retake.\n\n"
	}

	if m.session.EquipmentName != "" {
		view += infoStyle.Render(m.session.EquipmentName) + "\n\n"
	}

	items := m.session.Items()
	if len(items) == 0 {
		if m.session.EquipmentName != "" && m.controller.State() == capture.StatePhotoCaptured {
			view += dimStyle.Render("No checklist available for this equipment.") + "\n"
		}
	} else {
		view += "Checklist:\n"
		for i, it := range items {
			cursor := "  "
			if i == m.cursor {
				cursor = cursorStyle.Render("> ")
			}
			view += cursor + renderItemStatus(it.Status) + " " + it.Question + "\n"
		}
		view += "\n"
		if m.session.AllCompleted() {
			status := string(m.session.OverallStatus())
			if m.session.HasFailures() {
				view += failStyle.Render("Result: "+status) + "\n"
			} else {
				view += passStyle.Render("Result: "+status) + "\n"
			}
			view += "Press 'enter' to submit the inspection.\n"
		}
	}

	if m.error != "" {
		view += "\n" + errorStyle.Render(m.error) + "\n"
	}

	view += dimStyle.Render("\n'p' pass  'f' fail  'up/down' move  'esc' abandon")
	return view
}

// completeView confirms the persisted record
func (m Model) completeView() string {
	view := titleStyle.Render("Inspection Submitted") + "\n\n"
	view += fmt.Sprintf("Record ID: %d\n", m.result.ID)
	if m.result.Status == string(models.InspectionStatusSafe) {
		view += successStyle.Render(m.result.Status) + "\n"
	} else {
		view += errorStyle.Render(m.result.Status) + "\n"
	}
	if m.result.PhotoURL != "" {
		view += fmt.Sprintf("Photo: %s\n", m.result.PhotoURL)
	}
	view += "\nPress 'enter' to return to the main menu"
	return view
}

// dashboardViewContent renders stat cards above the records table
func (m Model) dashboardViewContent() string {
	view := titleStyle.Render("Safety Dashboard") + "\n\n"

	if m.loading {
		view += m.spinner.View() + " Loading records...\n"
		return view
	}

	if m.stats != nil {
		view += fmt.Sprintf("Total: %d   %s   %s   Today: %d\n\n",
			m.stats.Total,
			passStyle.Render(fmt.Sprintf("Safe: %d", m.stats.Safe)),
			failStyle.Render(fmt.Sprintf("Action Required: %d", m.stats.ActionRequired)),
			m.stats.Today,
		)
	}

	view += m.dashboardView.View() + "\n"
	if m.error != "" {
		view += errorStyle.Render(m.error) + "\n"
	}
	view += dimStyle.Render("\n'esc' to go back")
	return view
}

func renderItemStatus(status models.ItemStatus) string {
	switch status {
	case models.ItemStatusPass:
		return passStyle.Render("[PASS]")
	case models.ItemStatusFail:
		return failStyle.Render("[FAIL]")
	default:
		return dimStyle.Render("[    ]")
	}
}

// Custom message types for the tea.Model
type captureDoneMsg struct {
	err string
}

type checklistMsg struct {
	items []models.ChecklistItem
}

type submittedMsg struct {
	result SubmitResult
}

type dashboardMsg struct {
	stats Stats
	rows  []InspectionRow
}

type errorMsg struct {
	err string
}

// capturePhoto reads the photo file and runs the capture cycle,
// including identification in AI-assisted mode
func capturePhoto(controller *capture.Controller, path string) tea.Cmd {
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return captureDoneMsg{err: fmt.Sprintf("Error reading photo: %v", err)}
		}

		if err := controller.Capture(context.Background(), data, mimeTypeFor(path)); err != nil {
			return captureDoneMsg{err: fmt.Sprintf("Error identifying equipment: %v", err)}
		}
		return captureDoneMsg{}
	}
}

// fetchChecklist retrieves the checklist for a manually entered name
func fetchChecklist(client *ApiClient, equipment string) tea.Cmd {
	return func() tea.Msg {
		items, err := client.FetchChecklist(equipment)
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error fetching checklist: %v", err)}
		}
		return checklistMsg{items: items}
	}
}

// submitInspection sends the completed session to the API
func submitInspection(client *ApiClient, session *checklist.Session) tea.Cmd {
	return func() tea.Msg {
		payload := SubmitPayload{
			EquipmentName: session.EquipmentName,
			InspectorName: session.InspectorName,
			Mode:          string(session.Mode),
			Checklist:     session.Items(),
		}
		if data, mime, ok := session.Photo(); ok {
			payload.Photo = base64.StdEncoding.EncodeToString(data)
			payload.PhotoMimeType = mime
		}

		result, err := client.SubmitInspection(payload)
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error submitting inspection: %v", err)}
		}
		return submittedMsg{result: *result}
	}
}

// fetchDashboard retrieves stats and recent records together
func fetchDashboard(client *ApiClient) tea.Cmd {
	return func() tea.Msg {
		stats, err := client.GetStats()
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error fetching stats: %v", err)}
		}
		rows, err := client.ListInspections(50, "")
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error fetching inspections: %v", err)}
		}
		return dashboardMsg{stats: *stats, rows: rows}
	}
}

// convertInspectionsToRows converts API records to table rows
func convertInspectionsToRows(inspections []InspectionRow) []table.Row {
	rows := make([]table.Row, len(inspections))
	for i, record := range inspections {
		rows[i] = table.Row{
			fmt.Sprintf("%d", record.ID),
			record.EquipmentName,
			record.InspectorName,
			record.Status,
			record.CreatedAt.Format(time.RFC822),
		}
	}
	return rows
}

func mimeTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".heic":
		return "image/heic"
	default:
		return "image/jpeg"
	}
}

func main() {
	flag.Parse()

	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running program: %v", err)
		os.Exit(1)
	}
}
