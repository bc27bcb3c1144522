// Package script runs a cutscene/menu script as a tagged-action list
// driven by a program counter, matching the original's sequencer state
// machine: execute, wait for delay or input, page through menus, toggle
// checkboxes, and animate the news-reporter cutscene.
package script

import (
	"duke2sim/internal/input"
)

// ActionType tags one entry in a script's action list.
type ActionType int

const (
	ActionShowFullScreenImage ActionType = iota
	ActionSetPalette
	ActionDrawText
	ActionDrawBigText
	ActionDrawSprite
	ActionDelay
	ActionWaitForUserInput
	ActionFadeIn
	ActionFadeOut
	ActionShowMessageBox
	ActionShowMenuSelectionIndicator
	ActionSetupCheckBoxes
	ActionShowKeyBindings
	ActionShowSaveSlots
	ActionAnimateNewsReporter
	ActionStopNewsReporterAnimation
	ActionEnableTextOffset
	ActionEnableTimeOutToDemo
	ActionScheduleFadeInBeforeNextWaitState
	ActionDisableMenuFunctionality
	ActionConfigurePersistentMenuSelection
	ActionPagesDefinition
)

// CheckBoxDef describes one checkbox's position and identity.
type CheckBoxDef struct {
	Y  int
	ID int
}

// Action is one tagged script instruction. Only the fields relevant to
// its Type are populated.
type Action struct {
	Type ActionType

	X, Y, W, H int
	Text       []string
	ColorIndex int
	SpriteID   int
	Frame      int
	Ticks      int

	CheckBoxes []CheckBoxDef
	Slot       int

	Pages []Script
}

// Script is a named, ordered list of actions.
type Script struct {
	Name    string
	Actions []Action
}

// State is the sequencer's run state.
type State int

const (
	StateReadyToExecute State = iota
	StateExecutingScript
	StateAwaitingUserInput
	StateFinishedExecution
	StateExecutionInterrupted
)

// TerminationType classifies why a script stopped running.
type TerminationType int

const (
	TerminationRanToCompletion TerminationType = iota
	TerminationAbortedByUser
	TerminationMenuItemSelected
	TerminationTimedOut
)

// ExecutionResult is returned once the sequencer reaches a terminal
// state.
type ExecutionResult struct {
	Type          TerminationType
	SelectedPage  int
	HasSelectedPage bool
}

// PagingMode controls what a confirm press does while paging.
type PagingMode int

const (
	PagingMenu PagingMode = iota
	PagingOnly
)

type pagerState struct {
	pages            []Script
	mode             PagingMode
	currentPageIndex int
	maxPageIndex     int
}

type checkBoxState struct {
	y       int
	checked bool
	id      int
}

type checkBoxesState struct {
	x             int
	boxes         []checkBoxState
	currentPosY   int
}

// Hooks lets the orchestrator observe script completion and intercept
// raw input before the sequencer sees it, mirroring the original's
// scriptFinishedHook and peek-event hook.
type Hooks struct {
	OnFinished func(ExecutionResult)
	PeekInput  func(input.PlayerInput) (swallow bool)
}

// Sequencer drives a Script forward one tick at a time.
type Sequencer struct {
	script Script
	pc     int
	state  State
	result *ExecutionResult

	delayTicksLeft int

	newsReporterTicksLeft int
	newsReporterLastFrame int
	newsTable             [256]int

	pager      *pagerState
	checkBoxes *checkBoxesState

	persistentSelections       map[int]int
	currentPersistentSlot      *int
	fadeInBeforeNextWaitQueued bool
	menuDisabledForNextPages   bool

	// scriptSwapped marks that the last interpreted action replaced the
	// running script (a pager page went live) and already ran the new
	// script to its first wait, so the interpret loop must not advance
	// pc — it now indexes the new script.
	scriptSwapped bool

	timeoutToDemoTicks int // 0 disables the timeout feature
	idleTicks          int

	hooks Hooks

	pendingDraws []Action // drawn actions accumulated since the last tick, for the renderer to consume
}

// NewSequencer creates a Sequencer with a fixed 256-entry pseudo-random
// table for the news-reporter animation, matching the original's
// "sample from a fixed table" determinism requirement.
func NewSequencer(newsTable [256]int, hooks Hooks) *Sequencer {
	return &Sequencer{
		state:                 StateReadyToExecute,
		newsTable:             newsTable,
		persistentSelections:  make(map[int]int),
		hooks:                 hooks,
	}
}

// ExecuteScript begins running script from the top.
func (s *Sequencer) ExecuteScript(script Script) {
	s.script = script
	s.pc = 0
	s.state = StateExecutingScript
	s.result = nil
	s.idleTicks = 0
	s.pendingDraws = s.pendingDraws[:0]
	s.interpretUntilWait()
}

// HasFinishedExecution reports whether the sequencer reached a
// terminal state.
func (s *Sequencer) HasFinishedExecution() bool {
	return s.state == StateFinishedExecution || s.state == StateExecutionInterrupted
}

// Result returns the termination result, or nil if still running.
func (s *Sequencer) Result() *ExecutionResult {
	return s.result
}

// PendingDraws returns (and clears) the draw-affecting actions
// accumulated since the last call, for the HUD/world renderer to
// execute this frame.
func (s *Sequencer) PendingDraws() []Action {
	out := s.pendingDraws
	s.pendingDraws = nil
	return out
}

func (s *Sequencer) isInWaitState() bool {
	return s.state == StateAwaitingUserInput
}

// Cancel interrupts execution immediately, from any running state
// (ExecutingScript or AwaitingUserInput), matching spec's "* →
// ExecutionInterrupted on Escape/cancel" transition. Callers outside
// PlayerInput's per-tick sample (e.g. an OS key handler that wants to
// abort a screen without waiting for the next tick) can call this
// directly instead of routing a synthetic input through Update. A
// sequencer already finished or interrupted ignores it.
func (s *Sequencer) Cancel() {
	if s.state == StateFinishedExecution || s.state == StateExecutionInterrupted {
		return
	}
	s.finish(ExecutionResult{Type: TerminationAbortedByUser})
}

func (s *Sequencer) finish(result ExecutionResult) {
	s.state = StateFinishedExecution
	if result.Type == TerminationAbortedByUser {
		s.state = StateExecutionInterrupted
	}
	s.result = &result
	if s.hooks.OnFinished != nil {
		s.hooks.OnFinished(result)
	}
}

// Update advances the sequencer by one tick, given the current input.
// Any button press clears an AwaitingUserInput wait (other than a
// pending Delay, which only clears on timer expiry). A rising edge on
// Cancel interrupts execution from any running state, matching the
// original's Escape-always-aborts behavior.
func (s *Sequencer) Update(in input.PlayerInput) {
	if s.hooks.PeekInput != nil && s.hooks.PeekInput(in) {
		return
	}

	if s.state == StateFinishedExecution || s.state == StateExecutionInterrupted {
		return
	}

	if in.Cancel.WasTriggered {
		s.Cancel()
		return
	}

	if s.timeoutToDemoTicks > 0 {
		if anyButtonPressed(in) {
			s.idleTicks = 0
		} else {
			s.idleTicks++
			if s.idleTicks >= s.timeoutToDemoTicks {
				s.finish(ExecutionResult{Type: TerminationTimedOut})
				return
			}
		}
	}

	if s.state != StateAwaitingUserInput {
		return
	}

	if s.delayTicksLeft > 0 {
		s.delayTicksLeft--
		if s.delayTicksLeft == 0 {
			s.clearWaitState()
		}
		return
	}

	if s.hasMenuPages() {
		if s.handlePagerInput(in) {
			return
		}
	}

	if s.hasCheckBoxes() && in.Interact.WasTriggered {
		s.toggleCurrentCheckBox()
		return
	}

	if anyButtonPressed(in) {
		s.clearWaitState()
	}
}

func anyButtonPressed(in input.PlayerInput) bool {
	return in.Up || in.Down || in.Left || in.Right ||
		in.Jump.WasTriggered || in.Fire.WasTriggered || in.Interact.WasTriggered
}

func (s *Sequencer) clearWaitState() {
	s.state = StateExecutingScript
	s.interpretUntilWait()
}

func (s *Sequencer) interpretUntilWait() {
	s.scriptSwapped = false
	for s.state == StateExecutingScript {
		if s.pc >= len(s.script.Actions) {
			s.finish(ExecutionResult{Type: TerminationRanToCompletion})
			return
		}
		s.interpretNextAction(s.script.Actions[s.pc])
		if s.scriptSwapped {
			s.scriptSwapped = false
			return
		}
		s.pc++
	}
}

func (s *Sequencer) enterWait() {
	if s.fadeInBeforeNextWaitQueued {
		s.pendingDraws = append(s.pendingDraws, Action{Type: ActionFadeIn})
		s.fadeInBeforeNextWaitQueued = false
	}
	s.state = StateAwaitingUserInput
}

func (s *Sequencer) interpretNextAction(a Action) {
	switch a.Type {
	case ActionDelay:
		s.delayTicksLeft = a.Ticks
		s.enterWait()

	case ActionWaitForUserInput:
		s.enterWait()

	case ActionScheduleFadeInBeforeNextWaitState:
		s.fadeInBeforeNextWaitQueued = true

	case ActionEnableTimeOutToDemo:
		s.timeoutToDemoTicks = a.Ticks
		s.idleTicks = 0

	case ActionAnimateNewsReporter:
		s.newsReporterTicksLeft = a.Ticks
		s.newsReporterLastFrame = -1

	case ActionStopNewsReporterAnimation:
		s.newsReporterTicksLeft = 0

	case ActionSetupCheckBoxes:
		cb := &checkBoxesState{x: a.X}
		for _, def := range a.CheckBoxes {
			cb.boxes = append(cb.boxes, checkBoxState{y: def.Y, id: def.ID})
		}
		if len(cb.boxes) > 0 {
			cb.currentPosY = cb.boxes[0].y
		}
		s.checkBoxes = cb

	case ActionDisableMenuFunctionality:
		s.menuDisabledForNextPages = true

	case ActionConfigurePersistentMenuSelection:
		slot := a.Slot
		s.currentPersistentSlot = &slot

	case ActionPagesDefinition:
		mode := PagingMenu
		if s.menuDisabledForNextPages {
			mode = PagingOnly
			s.menuDisabledForNextPages = false
		}
		start := 0
		if s.currentPersistentSlot != nil {
			if saved, ok := s.persistentSelections[*s.currentPersistentSlot]; ok {
				start = saved
			}
		}
		s.pager = &pagerState{
			pages:            a.Pages,
			mode:             mode,
			currentPageIndex: start,
			maxPageIndex:     len(a.Pages) - 1,
		}
		s.executeCurrentPageScript()

	default:
		s.pendingDraws = append(s.pendingDraws, a)
	}
}

// Tick advances news-reporter animation timing and returns the sampled
// mouth-state frame (from the fixed 256-entry table), or -1 if no
// animation is running.
func (s *Sequencer) Tick(elapsedFrames int) int {
	if s.newsReporterTicksLeft <= 0 {
		return -1
	}
	s.newsReporterTicksLeft--
	frame := s.newsTable[elapsedFrames%len(s.newsTable)]
	s.newsReporterLastFrame = frame
	return frame
}

func (s *Sequencer) hasMenuPages() bool {
	return s.pager != nil
}

func (s *Sequencer) executeCurrentPageScript() {
	if s.pager == nil || s.pager.currentPageIndex >= len(s.pager.pages) {
		return
	}
	page := s.pager.pages[s.pager.currentPageIndex]
	s.script = page
	s.pc = 0
	s.interpretUntilWait()
	// Signal any enclosing interpret loop that pc now belongs to the
	// page script it just ran, not the script that loop was walking.
	s.scriptSwapped = true
}

func (s *Sequencer) onPageChanged() {
	if s.currentPersistentSlot != nil {
		s.persistentSelections[*s.currentPersistentSlot] = s.pager.currentPageIndex
	}
	s.executeCurrentPageScript()
}

func (s *Sequencer) selectNextPage() {
	if s.pager.currentPageIndex < s.pager.maxPageIndex {
		s.pager.currentPageIndex++
		s.onPageChanged()
	}
}

func (s *Sequencer) selectPreviousPage() {
	if s.pager.currentPageIndex > 0 {
		s.pager.currentPageIndex--
		s.onPageChanged()
	}
}

func (s *Sequencer) handlePagerInput(in input.PlayerInput) bool {
	switch {
	case in.Left || in.Up:
		s.selectPreviousPage()
		return true
	case in.Right || in.Down:
		s.selectNextPage()
		return true
	case in.Jump.WasTriggered || in.Fire.WasTriggered || in.Interact.WasTriggered:
		if s.pager.mode == PagingOnly {
			s.selectNextPage()
			return true
		}
		s.finish(ExecutionResult{
			Type:            TerminationMenuItemSelected,
			SelectedPage:    s.pager.currentPageIndex,
			HasSelectedPage: true,
		})
		return true
	}
	return false
}

func (s *Sequencer) hasCheckBoxes() bool {
	return s.checkBoxes != nil && len(s.checkBoxes.boxes) > 0
}

func (s *Sequencer) toggleCurrentCheckBox() {
	if s.checkBoxes == nil {
		return
	}
	for i := range s.checkBoxes.boxes {
		if s.checkBoxes.boxes[i].y == s.checkBoxes.currentPosY {
			s.checkBoxes.boxes[i].checked = !s.checkBoxes.boxes[i].checked
			return
		}
	}
}

// CheckBoxState reports whether the checkbox with the given id is
// currently checked.
func (s *Sequencer) CheckBoxState(id int) bool {
	if s.checkBoxes == nil {
		return false
	}
	for _, b := range s.checkBoxes.boxes {
		if b.id == id {
			return b.checked
		}
	}
	return false
}
