package tui

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/linkwise/internal/bankinfo"
	"github.com/jask/linkwise/internal/config"
	"github.com/jask/linkwise/internal/draftstore"
	"github.com/jask/linkwise/internal/form"
	"github.com/jask/linkwise/internal/netsuite"
	"github.com/jask/linkwise/internal/service"
	"github.com/jask/linkwise/internal/switcher"
	"github.com/jask/linkwise/internal/testdata"
)

// App ties together views.
type App struct {
	ctx      context.Context
	cfg      config.Config
	store    draftstore.Store
	services Services
	keys     *KeyRegistry
	state    appState
	status   string

	subs map[string]*draftstore.Subscription

	menuCursor int

	flow         *bankinfo.Flow
	restartFlow  bool
	plaidCursor  int
	plaidFocused bool
	manualField  int

	switcher switcher.Model

	policy       *netsuite.Policy
	wizard       *netsuite.Wizard
	optionCursor int
	lastErrors   form.Errors
}

type Services struct {
	Bank        *service.BankAccountService
	Segments    *service.CustomSegmentService
	Contacts    *service.ContactService
	Fixtures    *service.FixtureService
	Maintenance *service.MaintenanceService
}

type appState string

const (
	viewMenu     appState = "menu"
	viewBank     appState = "bank"
	viewSwitcher appState = "switcher"
	viewNetSuite appState = "netsuite"
)

type menuItem struct {
	label string
	state appState
	cmd   func(a *App) tea.Cmd
}

var menuItems = []menuItem{
	{label: "Link bank account", state: viewBank},
	{label: "Chat switcher", state: viewSwitcher},
	{label: "NetSuite custom segment", state: viewNetSuite},
	{label: "Load demo Plaid data", cmd: (*App).demoPlaidCmd},
	{label: "Reset all data", cmd: (*App).resetCmd},
}

var manualFields = []string{bankinfo.InputRoutingNumber, bankinfo.InputAccountNumber}

func New(ctx context.Context, cfg config.Config, store draftstore.Store, services Services) *App {
	a := &App{
		ctx:      ctx,
		cfg:      cfg,
		store:    store,
		services: services,
		keys:     NewKeyRegistry(),
		state:    viewMenu,
		subs:     map[string]*draftstore.Subscription{},
		switcher: switcher.New(nil, cfg.UI.ListWidth),
		policy:   &netsuite.Policy{ID: cfg.Policy.ID},
	}
	a.flow = a.newFlow()
	a.wizard = a.newWizard()
	return a
}

func (a *App) newFlow() *bankinfo.Flow {
	var linker bankinfo.Linker
	if a.services.Bank != nil {
		linker = a.services.Bank
	}
	return bankinfo.NewFlow(a.store, linker, func() {
		a.status = "bank account linked"
		a.state = viewMenu
		a.restartFlow = true
	})
}

func (a *App) newWizard() *netsuite.Wizard {
	var fin netsuite.Finalizer
	if a.services.Segments != nil {
		fin = a.services.Segments
	}
	return netsuite.NewWizard(a.store, a.policy, fin, func() {
		a.status = "custom segment added"
		a.state = viewMenu
	})
}

// prime loads the current value of keys into apply, for steps created after
// the subscriptions delivered their snapshots.
func (a *App) prime(keys []string, apply func(context.Context, draftstore.Snapshot) error) error {
	for _, k := range keys {
		rec, ok, err := a.store.Get(a.ctx, k)
		if err != nil {
			return err
		}
		if err := apply(a.ctx, draftstore.Snapshot{Key: k, Record: rec, Present: ok}); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) Init() tea.Cmd {
	keys := append(a.flow.Keys(), a.wizard.Keys()...)
	cmds := make([]tea.Cmd, 0, len(keys)+2)
	for _, k := range keys {
		if _, ok := a.subs[k]; ok {
			continue
		}
		sub := a.store.Subscribe(k)
		a.subs[k] = sub
		cmds = append(cmds, waitForSnapshot(sub))
	}
	cmds = append(cmds, a.loadContacts(), a.loadPolicy())
	return tea.Batch(cmds...)
}

// Close stops every store subscription.
func (a *App) Close() {
	for _, s := range a.subs {
		s.Close()
	}
}

func waitForSnapshot(sub *draftstore.Subscription) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-sub.C()
		if !ok {
			return nil
		}
		return snapshotMsg(snap)
	}
}

func (a *App) loadContacts() tea.Cmd {
	return func() tea.Msg {
		if a.services.Contacts == nil {
			return contactsMsg(nil)
		}
		opts, err := a.services.Contacts.Options(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		return contactsMsg(opts)
	}
}

func (a *App) loadPolicy() tea.Cmd {
	return func() tea.Msg {
		if a.services.Segments == nil {
			return nil
		}
		p, err := a.services.Segments.Policy(a.ctx, a.cfg.Policy.ID)
		if err != nil {
			return errMsg{err}
		}
		return policyMsg{p}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := a.update(msg)
	a.syncPlaidFocus()
	return model, cmd
}

func (a *App) update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.KeyMsg:
		if a.keys.Action(m.String(), scopeGlobal) == actionQuit {
			return a, tea.Quit
		}
		switch a.state {
		case viewBank:
			return a.handleBankKey(m)
		case viewSwitcher:
			return a.handleSwitcherKey(m)
		case viewNetSuite:
			return a.handleNetSuiteKey(m)
		default:
			return a.handleMenuKey(m)
		}
	case snapshotMsg:
		return a, a.applySnapshot(draftstore.Snapshot(m))
	case contactsMsg:
		a.switcher.SetOptions([]switcher.Option(m))
	case policyMsg:
		a.policy.CustomSegments = m.policy.CustomSegments
	case switcher.SelectedMsg:
		return a, a.openChatCmd(m)
	case switcher.AddedMsg:
		a.status = "added " + m.Option.Text + " to group"
	case statusMsg:
		a.status = string(m)
	case errMsg:
		log.Printf("tui: %v", m.error)
		a.status = "error: " + m.Error()
	}
	return a, nil
}

func (a *App) applySnapshot(snap draftstore.Snapshot) tea.Cmd {
	switch snap.Key {
	case netsuite.KeyAddFormDraft:
		if err := a.wizard.Apply(a.ctx, snap); err != nil {
			a.status = "error: " + err.Error()
		}
	default:
		if err := a.flow.Apply(a.ctx, snap); err != nil {
			a.status = "error: " + err.Error()
		}
		if n := len(a.flow.Plaid.Candidates()); a.plaidCursor >= n {
			a.plaidCursor = max(0, n-1)
		}
	}
	if sub, ok := a.subs[snap.Key]; ok {
		return waitForSnapshot(sub)
	}
	return nil
}

// syncPlaidFocus reports visibility changes of the aggregator picker.
func (a *App) syncPlaidFocus() {
	visible := a.state == viewBank && a.flow.Screen() == bankinfo.ScreenPlaid
	if visible == a.plaidFocused {
		return
	}
	a.plaidFocused = visible
	if err := a.flow.Plaid.SetFocused(a.ctx, visible); err != nil {
		a.status = "error: " + err.Error()
	}
}

// scope names the key scope of the visible screen.
func (a *App) scope() string {
	switch a.state {
	case viewBank:
		switch a.flow.Screen() {
		case bankinfo.ScreenPlaid:
			if a.flow.Plaid.IsSubmitVisible() {
				return scopeBankPlaidReady
			}
			return scopeBankPlaid
		case bankinfo.ScreenManual:
			return scopeBankManual
		case bankinfo.ScreenConfirm:
			return scopeBankConfirm
		default:
			return scopeBankChoose
		}
	case viewSwitcher:
		return scopeSwitcher
	case viewNetSuite:
		step := a.wizard.Current()
		switch {
		case step == nil:
			return scopeNetSuiteConfirm
		case step.Options() != nil:
			return scopeNetSuiteOptions
		default:
			return scopeNetSuiteText
		}
	default:
		return scopeMenu
	}
}

func (a *App) handleMenuKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.keys.Action(m.String(), scopeMenu) {
	case actionQuit:
		return a, tea.Quit
	case actionUp:
		if a.menuCursor > 0 {
			a.menuCursor--
		}
	case actionDown:
		if a.menuCursor < len(menuItems)-1 {
			a.menuCursor++
		}
	case actionSelect:
		item := menuItems[a.menuCursor]
		a.status = ""
		if item.cmd != nil {
			return a, item.cmd(a)
		}
		a.state = item.state
		if item.state == viewBank && a.restartFlow {
			a.restartFlow = false
			a.flow = a.newFlow()
			a.plaidFocused = false
			a.plaidCursor = 0
			a.lastErrors = nil
			if err := a.prime(a.flow.Keys(), a.flow.Apply); err != nil {
				a.status = "error: " + err.Error()
			}
		}
		if item.state == viewNetSuite {
			a.lastErrors = nil
			a.optionCursor = 0
			if err := a.wizard.Start(a.ctx); err != nil {
				a.status = "error: " + err.Error()
			}
		}
		if item.state == viewSwitcher {
			return a, a.loadContacts()
		}
	}
	return a, nil
}

func (a *App) handleBankKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	action := a.keys.Action(m.String(), a.scope())
	if action == actionBack {
		ok, err := a.flow.Back(a.ctx)
		if err != nil {
			a.status = "error: " + err.Error()
		}
		if !ok {
			a.state = viewMenu
		}
		a.lastErrors = nil
		return a, nil
	}
	switch a.flow.Screen() {
	case bankinfo.ScreenChoose:
		switch action {
		case actionConnectPlaid:
			return a, a.storeCmd(func() error { return a.flow.ChooseSubStep(a.ctx, bankinfo.SubStepPlaid) })
		case actionConnectManual:
			a.manualField = 0
			return a, a.storeCmd(func() error { return a.flow.ChooseSubStep(a.ctx, bankinfo.SubStepManual) })
		}
	case bankinfo.ScreenPlaid:
		cands := a.flow.Plaid.Candidates()
		switch action {
		case actionUp:
			if a.plaidCursor > 0 {
				a.plaidCursor--
			}
		case actionDown:
			if a.plaidCursor < len(cands)-1 {
				a.plaidCursor++
			}
		case actionSelect:
			if a.plaidCursor < len(cands) {
				id := cands[a.plaidCursor].PlaidAccountID
				return a, a.storeCmd(func() error { return a.flow.Plaid.SelectAccount(a.ctx, id) })
			}
		case actionToggleTerms:
			if err := a.flow.Plaid.SetAcceptTerms(a.ctx, !a.flow.Plaid.AcceptedTerms()); err != nil {
				a.status = "error: " + err.Error()
			}
		case actionNext:
			a.lastErrors, _ = a.submit(a.flow.Plaid.Next)
		case actionExitPlaid:
			return a, a.storeCmd(func() error { return a.flow.Plaid.ExitPlaid(a.ctx) })
		}
	case bankinfo.ScreenManual:
		field := manualFields[a.manualField]
		switch action {
		case actionNextField:
			a.manualField = (a.manualField + 1) % len(manualFields)
		case actionNext:
			a.lastErrors, _ = a.submit(a.flow.Manual.Next)
		case actionDeleteChar:
			v := a.flow.Manual.Value(field)
			if v != "" {
				a.setManual(field, dropLastRune(v))
			}
		default:
			if text := typedText(m); text != "" {
				a.setManual(field, a.flow.Manual.Value(field)+text)
			}
		}
	case bankinfo.ScreenConfirm:
		switch action {
		case actionConfirm:
			a.lastErrors, _ = a.submit(a.flow.Confirm.Next)
		case actionEdit:
			a.flow.Edit()
		}
	}
	return a, nil
}

func (a *App) setManual(field, value string) {
	if err := a.flow.Manual.SetInput(a.ctx, field, value); err != nil {
		a.status = "error: " + err.Error()
	}
}

// submit runs a step's Next, turning blocking validation into inline errors.
func (a *App) submit(next func(context.Context) (form.Errors, error)) (form.Errors, error) {
	errs, err := next(a.ctx)
	if err != nil && len(errs) == 0 {
		a.status = "error: " + err.Error()
	}
	return errs, err
}

func (a *App) handleSwitcherKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.keys.Action(m.String(), scopeSwitcher) == actionBack {
		a.state = viewMenu
		return a, nil
	}
	var cmd tea.Cmd
	a.switcher, cmd = a.switcher.Update(m)
	return a, cmd
}

func (a *App) handleNetSuiteKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := m.String()
	action := a.keys.Action(key, a.scope())
	if action == actionBack {
		ok, err := a.wizard.Back(a.ctx)
		if err != nil {
			a.status = "error: " + err.Error()
		}
		if !ok {
			a.state = viewMenu
		}
		a.lastErrors = nil
		return a, nil
	}
	step := a.wizard.Current()
	if step == nil {
		switch action {
		case actionConfirm:
			errs, err := a.submit(a.wizard.Next)
			a.lastErrors = errs
			if err == nil {
				a.wizard = a.newWizard()
				if err := a.prime(a.wizard.Keys(), a.wizard.Apply); err != nil {
					a.status = "error: " + err.Error()
				}
				return a, a.loadPolicy()
			}
		case actionEditField:
			if i := int(key[0] - '1'); i >= 0 && i < len(netsuite.FieldOrder) {
				if err := a.wizard.Edit(a.ctx, netsuite.FieldOrder[i]); err != nil {
					a.status = "error: " + err.Error()
				}
			}
		}
		return a, nil
	}
	if opts := step.Options(); opts != nil {
		switch action {
		case actionUp:
			if a.optionCursor > 0 {
				a.optionCursor--
			}
		case actionDown:
			if a.optionCursor < len(opts)-1 {
				a.optionCursor++
			}
		case actionNext:
			if err := step.SetInput(a.ctx, opts[a.optionCursor]); err != nil {
				a.status = "error: " + err.Error()
				return a, nil
			}
			a.lastErrors, _ = a.submit(a.wizard.Next)
			a.optionCursor = 0
		}
		return a, nil
	}
	switch action {
	case actionNext:
		a.lastErrors, _ = a.submit(a.wizard.Next)
	case actionDeleteChar:
		if v := step.Value(); v != "" {
			if err := step.SetInput(a.ctx, dropLastRune(v)); err != nil {
				a.status = "error: " + err.Error()
			}
		}
	default:
		if text := typedText(m); text != "" {
			if err := step.SetInput(a.ctx, step.Value()+text); err != nil {
				a.status = "error: " + err.Error()
			}
		}
	}
	return a, nil
}

// typedText is the printable text a key adds to a text input.
func typedText(m tea.KeyMsg) string {
	switch m.Type {
	case tea.KeyRunes:
		return string(m.Runes)
	case tea.KeySpace:
		return " "
	}
	return ""
}

func dropLastRune(s string) string {
	_, size := utf8.DecodeLastRuneInString(s)
	return s[:len(s)-size]
}

// commands
func (a *App) storeCmd(fn func() error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(); err != nil {
			return errMsg{err}
		}
		return nil
	}
}

func (a *App) demoPlaidCmd() tea.Cmd {
	return func() tea.Msg {
		if a.services.Fixtures == nil {
			return statusMsg("fixtures unavailable")
		}
		data := testdata.GeneratePlaidData(3, rand.New(rand.NewSource(time.Now().UnixNano())))
		if err := a.services.Fixtures.SavePlaid(a.ctx, data); err != nil {
			return errMsg{err}
		}
		return statusMsg(fmt.Sprintf("loaded %d demo accounts from %s", len(data.BankAccounts), data.BankName))
	}
}

func (a *App) resetCmd() tea.Cmd {
	return tea.Batch(
		func() tea.Msg {
			if a.services.Maintenance == nil {
				return statusMsg("reset unavailable")
			}
			if err := a.services.Maintenance.Reset(a.ctx); err != nil {
				return errMsg{err}
			}
			return statusMsg("all data reset")
		},
		a.loadContacts(),
		a.loadPolicy(),
	)
}

func (a *App) openChatCmd(sel switcher.SelectedMsg) tea.Cmd {
	return func() tea.Msg {
		ids := []string{sel.Option.ID}
		for _, g := range sel.Group {
			ids = append(ids, g.ID)
		}
		if a.services.Contacts != nil {
			if err := a.services.Contacts.Open(a.ctx, ids...); err != nil {
				return errMsg{err}
			}
		}
		if len(sel.Group) > 0 {
			return statusMsg(fmt.Sprintf("opened group chat with %s and %d others", sel.Option.Text, len(sel.Group)))
		}
		return statusMsg("opened chat with " + sel.Option.Text)
	}
}

type snapshotMsg draftstore.Snapshot

type contactsMsg []switcher.Option

type policyMsg struct{ policy *netsuite.Policy }

type statusMsg string

type errMsg struct{ error }

func (a *App) View() string {
	var body string
	switch a.state {
	case viewBank:
		body = a.renderBank()
	case viewSwitcher:
		body = titleStyle.Render("Switch chat") + "\n" + listBoxStyle.Render(a.switcher.View())
	case viewNetSuite:
		body = a.renderNetSuite()
	default:
		body = a.renderMenu()
	}
	body += "\n\n" + renderFooter(a.keys.HelpBindings(a.scope()))
	if a.status != "" {
		body += "\n" + renderStatus(a.status)
	}
	return body
}

func (a *App) renderMenu() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("linkwise") + "\n")
	for i, item := range menuItems {
		b.WriteString(cursor(i == a.menuCursor) + item.label + "\n")
	}
	return b.String()
}

func cursor(on bool) string {
	if on {
		return cursorStyle.Render("> ")
	}
	return "  "
}

func renderErrors(errs form.Errors) string {
	if len(errs) == 0 {
		return ""
	}
	var b strings.Builder
	for _, f := range errs.Fields() {
		fe := errs[f]
		b.WriteString("\n" + errStyle.Render(fmt.Sprintf("%s: %s", f, fe.MessageKey)))
	}
	return b.String()
}

func (a *App) renderBank() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Bank account") + "\n")
	switch a.flow.Screen() {
	case bankinfo.ScreenChoose:
		if id := a.flow.Plaid.BankAccountID(); id != 0 {
			b.WriteString(fmt.Sprintf("Account #%d is already linked.\n", id))
		}
		b.WriteString("How would you like to connect?\n")
	case bankinfo.ScreenPlaid:
		data := a.flow.Plaid.PlaidData()
		cands := a.flow.Plaid.Candidates()
		switch {
		case data == nil:
			b.WriteString("Waiting for Plaid... load demo data from the menu.\n")
		case len(cands) == 0:
			b.WriteString("No accounts found at " + data.BankName + ".\n")
		default:
			b.WriteString("Accounts at " + data.BankName + "\n")
		}
		selected := a.flow.Plaid.SelectedAccountID()
		for i, c := range cands {
			mark := "( )"
			if c.PlaidAccountID == selected {
				mark = selectedStyle.Render("(•)")
			}
			b.WriteString(fmt.Sprintf("%s%s %s ••••%s\n", cursor(i == a.plaidCursor), mark, bankinfo.AccountType(c.IsSavings), c.Mask))
		}
		terms := "[ ]"
		if a.flow.Plaid.AcceptedTerms() {
			terms = "[x]"
		}
		b.WriteString("\n" + terms + " I accept the terms")
		b.WriteString(renderErrors(a.lastErrors))
	case bankinfo.ScreenManual:
		labels := []string{"Routing number", "Account number"}
		for i, f := range manualFields {
			b.WriteString(fmt.Sprintf("%s%s: %s\n", cursor(i == a.manualField), labels[i], a.flow.Manual.Value(f)))
		}
		b.WriteString(renderErrors(a.lastErrors))
	case bankinfo.ScreenConfirm:
		b.WriteString(infoStyle.Render("Link this account?") + "\n")
		for _, line := range a.flow.Confirm.Summary().Lines() {
			b.WriteString(line + "\n")
		}
	}
	return b.String()
}

func (a *App) renderNetSuite() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("NetSuite custom segment") + "\n")
	step := a.wizard.Current()
	if step == nil {
		seg := a.wizard.Confirm.Segment()
		rows := []string{seg.RecordType, seg.SegmentName, seg.InternalID, seg.ScriptID, seg.Mapping}
		for i, f := range netsuite.FieldOrder {
			b.WriteString(fmt.Sprintf("%d. %s: %s\n", i+1, f, rows[i]))
		}
		b.WriteString(renderErrors(a.lastErrors))
		return b.String()
	}
	b.WriteString(step.Title() + "\n")
	if opts := step.Options(); opts != nil {
		for i, o := range opts {
			b.WriteString(cursor(i == a.optionCursor) + o + "\n")
		}
	} else {
		b.WriteString(step.Label() + ": " + step.Value() + "\n")
	}
	if footer := step.Footer(); footer != "" {
		b.WriteString(hintStyle.Render(footer) + "\n")
	}
	b.WriteString(renderErrors(step.Errors()))
	return b.String()
}
