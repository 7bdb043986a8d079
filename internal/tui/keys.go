package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type Action string

type Binding struct {
	Action Action
	Keys   []string
	Help   string
	Scopes []string
}

// KeyRegistry maps key names to actions per view scope. Lookups fall back to
// the global scope.
type KeyRegistry struct {
	bindingsByScope map[string][]*Binding
	indexByScope    map[string]map[string]*Binding
}

const (
	scopeGlobal          = "global"
	scopeMenu            = "menu"
	scopeBankChoose      = "bank_choose"
	scopeBankPlaid       = "bank_plaid"
	scopeBankPlaidReady  = "bank_plaid_ready"
	scopeBankManual      = "bank_manual"
	scopeBankConfirm     = "bank_confirm"
	scopeSwitcher        = "switcher"
	scopeNetSuiteOptions = "netsuite_options"
	scopeNetSuiteText    = "netsuite_text"
	scopeNetSuiteConfirm = "netsuite_confirm"
)

const (
	actionQuit          Action = "quit"
	actionBack          Action = "back"
	actionUp            Action = "up"
	actionDown          Action = "down"
	actionSelect        Action = "select"
	actionConnectPlaid  Action = "connect_plaid"
	actionConnectManual Action = "connect_manual"
	actionToggleTerms   Action = "toggle_terms"
	actionNext          Action = "next"
	actionExitPlaid     Action = "exit_plaid"
	actionNextField     Action = "next_field"
	actionDeleteChar    Action = "delete_char"
	actionConfirm       Action = "confirm"
	actionEdit          Action = "edit"
	actionEditField     Action = "edit_field"
	actionOpenChat      Action = "open_chat"
	actionAddToGroup    Action = "add_to_group"
)

func NewKeyRegistry() *KeyRegistry {
	r := &KeyRegistry{
		bindingsByScope: make(map[string][]*Binding),
		indexByScope:    make(map[string]map[string]*Binding),
	}

	reg := func(scope string, action Action, keys []string, help string) {
		r.Register(Binding{Action: action, Keys: keys, Help: help, Scopes: []string{scope}})
	}

	// Only ctrl+c is global: text screens take every printable key.
	reg(scopeGlobal, actionQuit, []string{"ctrl+c"}, "quit")

	reg(scopeMenu, actionSelect, []string{"enter"}, "open")
	reg(scopeMenu, actionUp, []string{"k", "up"}, "up")
	reg(scopeMenu, actionDown, []string{"j", "down"}, "down")
	reg(scopeMenu, actionQuit, []string{"q", "ctrl+c"}, "quit")

	reg(scopeBankChoose, actionConnectPlaid, []string{"p"}, "connect with Plaid")
	reg(scopeBankChoose, actionConnectManual, []string{"m"}, "enter manually")
	reg(scopeBankChoose, actionBack, []string{"esc"}, "back")

	// The ready scope adds next once submit is visible.
	for _, scope := range []string{scopeBankPlaidReady, scopeBankPlaid} {
		if scope == scopeBankPlaidReady {
			reg(scope, actionNext, []string{"n"}, "next")
		}
		reg(scope, actionSelect, []string{"enter", "space"}, "select")
		reg(scope, actionUp, []string{"k", "up"}, "up")
		reg(scope, actionDown, []string{"j", "down"}, "down")
		reg(scope, actionToggleTerms, []string{"t"}, "terms")
		reg(scope, actionExitPlaid, []string{"x"}, "exit Plaid")
		reg(scope, actionBack, []string{"esc"}, "back")
	}

	reg(scopeBankManual, actionNext, []string{"enter"}, "next")
	reg(scopeBankManual, actionNextField, []string{"tab", "shift+tab"}, "switch field")
	reg(scopeBankManual, actionDeleteChar, []string{"backspace"}, "delete")
	reg(scopeBankManual, actionBack, []string{"esc"}, "back")

	reg(scopeBankConfirm, actionConfirm, []string{"enter", "y"}, "link account")
	reg(scopeBankConfirm, actionEdit, []string{"e"}, "edit")
	reg(scopeBankConfirm, actionBack, []string{"esc"}, "back")

	// Filtering keys belong to the switcher model; these are for the footer.
	reg(scopeSwitcher, actionOpenChat, []string{"enter"}, "open")
	reg(scopeSwitcher, actionAddToGroup, []string{"tab"}, "add to group")
	reg(scopeSwitcher, actionBack, []string{"esc"}, "back")

	reg(scopeNetSuiteOptions, actionNext, []string{"enter"}, "next")
	reg(scopeNetSuiteOptions, actionUp, []string{"k", "up"}, "up")
	reg(scopeNetSuiteOptions, actionDown, []string{"j", "down"}, "down")
	reg(scopeNetSuiteOptions, actionBack, []string{"esc"}, "back")

	reg(scopeNetSuiteText, actionNext, []string{"enter"}, "next")
	reg(scopeNetSuiteText, actionDeleteChar, []string{"backspace"}, "delete")
	reg(scopeNetSuiteText, actionBack, []string{"esc"}, "back")

	reg(scopeNetSuiteConfirm, actionConfirm, []string{"enter", "y"}, "save")
	reg(scopeNetSuiteConfirm, actionEditField, []string{"1-5", "1", "2", "3", "4", "5"}, "edit")
	reg(scopeNetSuiteConfirm, actionBack, []string{"esc"}, "back")

	return r
}

func (r *KeyRegistry) Register(b Binding) {
	if r == nil {
		return
	}
	for _, scope := range b.Scopes {
		scope = strings.TrimSpace(scope)
		if scope == "" || len(b.Keys) == 0 {
			continue
		}
		if _, ok := r.indexByScope[scope]; !ok {
			r.indexByScope[scope] = make(map[string]*Binding)
		}
		normKeys := normalizeKeyList(b.Keys)
		if len(normKeys) == 0 {
			continue
		}
		if r.scopeHasAnyKey(scope, normKeys) {
			continue
		}

		copyBinding := b
		copyBinding.Keys = normKeys
		copyBinding.Scopes = []string{scope}
		r.bindingsByScope[scope] = append(r.bindingsByScope[scope], &copyBinding)
		for _, k := range copyBinding.Keys {
			r.indexByScope[scope][k] = &copyBinding
		}
	}
}

func (r *KeyRegistry) BindingsForScope(scope string) []Binding {
	if r == nil {
		return nil
	}
	items := r.bindingsByScope[scope]
	out := make([]Binding, 0, len(items))
	for _, b := range items {
		out = append(out, *b)
	}
	return out
}

// Lookup resolves keyName in scope, then in the global scope.
func (r *KeyRegistry) Lookup(keyName, scope string) *Binding {
	if r == nil || keyName == "" {
		return nil
	}
	keyName = normalizeKeyName(keyName)
	if b := r.lookupInScope(keyName, scope); b != nil {
		return b
	}
	if scope != scopeGlobal {
		return r.lookupInScope(keyName, scopeGlobal)
	}
	return nil
}

// Action is Lookup reduced to the action name; "" when unbound.
func (r *KeyRegistry) Action(keyName, scope string) Action {
	if b := r.Lookup(keyName, scope); b != nil {
		return b.Action
	}
	return ""
}

func (r *KeyRegistry) HelpBindings(scope string) []key.Binding {
	items := r.BindingsForScope(scope)
	out := make([]key.Binding, 0, len(items))
	for _, b := range items {
		out = append(out, key.NewBinding(key.WithKeys(b.Keys...), key.WithHelp(b.Keys[0], b.Help)))
	}
	return out
}

func (r *KeyRegistry) lookupInScope(keyName, scope string) *Binding {
	lookup, ok := r.indexByScope[scope]
	if !ok {
		return nil
	}
	return lookup[keyName]
}

func (r *KeyRegistry) scopeHasAnyKey(scope string, keys []string) bool {
	lookup := r.indexByScope[scope]
	for _, k := range keys {
		if _, exists := lookup[k]; exists {
			return true
		}
	}
	return false
}

func normalizeKeyList(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]bool)
	for _, k := range keys {
		n := normalizeKeyName(k)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

func normalizeKeyName(k string) string {
	if k == " " {
		return "space"
	}
	trimmed := strings.TrimSpace(k)
	if trimmed == "" {
		return ""
	}
	if len(trimmed) == 1 {
		// Keep case so typed uppercase stays distinct.
		return trimmed
	}
	s := strings.ToLower(trimmed)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "control+", "ctrl+")
	s = strings.ReplaceAll(s, "return", "enter")
	return s
}
