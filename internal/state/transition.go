package state

import (
	"github.com/musher-dev/mcpterm/internal/command"
)

// Transition applies ev to s and returns the next state and an optional
// effect. It is a pure function.
func Transition(s State, ev Event) (State, Effect) {
	switch ev := ev.(type) {
	case Key:
		return onKey(s, ev)
	case Paste:
		switch s.Mode {
		case Insert, Command:
			s.Input = s.Input.Insert(ev.Text)
			s.Completion = nil
		}

		return s, nil
	case Resize:
		s.Width, s.Height = ev.Width, ev.Height
		return s, nil
	case Wheel:
		if s.MouseEnabled {
			s.Scroll += ev.Delta
			s = s.clampScroll()
		}

		return s, nil
	case Tick:
		s.Ticks++
		return s, nil
	case Protocol:
		return onProtocol(s, ev.Event)
	case EffectFailed:
		return s.logf("Error: " + ev.Err.Error()), nil
	default:
		return s, nil
	}
}

func onKey(s State, k Key) (State, Effect) {
	switch {
	case k.isCtrl('q'):
		s.Quit = true
		return s, QuitEffect{}
	case k.isCtrl('l'):
		s.Log = OutputLog{}
		s.Scroll = 0

		return s, nil
	}

	switch s.Mode {
	case Normal:
		return normalKey(s, k)
	case Insert:
		return insertKey(s, k), nil
	case Command:
		return commandKey(s, k)
	case Select:
		return selectKey(s, k)
	default:
		return s, nil
	}
}

func normalKey(s State, k Key) (State, Effect) {
	switch {
	case k.isRune('i'):
		s.Mode = Insert
	case k.isRune(':'):
		s.Mode = Command
		s.Input = Buffer{}
		s.Completion = nil
		s.History = s.History.Reset()
	case k.isRune('q'):
		s.Quit = true
		return s, QuitEffect{}
	case k.Code == KeyPageUp:
		s.Scroll += s.page()
		s = s.clampScroll()
	case k.Code == KeyPageDown:
		s.Scroll = max(0, s.Scroll-s.page())
	case k.Code == KeyHome:
		s.Scroll = s.Log.Len()
		s = s.clampScroll()
	case k.Code == KeyEnd:
		s.Scroll = 0
	}

	return s, nil
}

func insertKey(s State, k Key) State {
	switch {
	case k.Code == KeyEsc:
		s.Mode = Normal
	case k.Code == KeyEnter:
		text := s.Input.Text()
		s.Input = Buffer{}
		s.Mode = Normal

		if text != "" {
			s = s.logf("› " + text)
		}
	case k.isCtrl('w'):
		s.Input = Buffer{}
	default:
		s.Input = edit(s.Input, k)
	}

	return s
}

// edit applies a line-editing key to b.
func edit(b Buffer, k Key) Buffer {
	switch k.Code {
	case KeyBackspace:
		return b.Backspace()
	case KeyDelete:
		return b.Delete()
	case KeyLeft:
		return b.Left()
	case KeyRight:
		return b.Right()
	case KeyHome:
		return b.Home()
	case KeyEnd:
		return b.End()
	case KeyRune:
		if k.printable() {
			return b.Insert(string(k.Rune))
		}
	}

	return b
}

func commandKey(s State, k Key) (State, Effect) {
	if s.Completion != nil {
		next, handled := completionKey(s, k)
		if handled {
			return next, nil
		}

		s.Completion = nil
	}

	switch k.Code {
	case KeyEsc:
		s.Mode = Normal
		s.Input = Buffer{}
		s.History = s.History.Reset()

		return s, nil
	case KeyEnter:
		return submitCommand(s)
	case KeyTab:
		return complete(s), nil
	case KeyUp:
		if h, line, ok := s.History.Prev(); ok {
			s.History = h
			s.Input = NewBuffer(line)
		}

		return s, nil
	case KeyDown:
		if h, line, ok := s.History.Next(); ok {
			s.History = h
			s.Input = NewBuffer(line)
		}

		return s, nil
	default:
		s.Input = edit(s.Input, k)
		return s, nil
	}
}

func completionKey(s State, k Key) (State, bool) {
	c := *s.Completion

	switch k.Code {
	case KeyTab, KeyDown:
		c.Index = (c.Index + 1) % len(c.Items)
	case KeyUp:
		c.Index = (c.Index - 1 + len(c.Items)) % len(c.Items)
	case KeyEnter:
		s.Input = NewBuffer(c.Items[c.Index])
		s.Completion = nil

		return s, true
	case KeyEsc:
		s.Completion = nil
		return s, true
	default:
		return s, false
	}

	s.Completion = &c

	return s, true
}

func complete(s State) State {
	candidates := command.Complete(s.Input.Text(), command.Lists{
		Servers: s.ServerNames(),
		Tools:   s.ToolNames(),
	})

	switch len(candidates) {
	case 0:
		s.Status = "no completions"
	case 1:
		s.Input = NewBuffer(candidates[0] + " ")
	default:
		s.Completion = &Completion{Items: candidates}
	}

	return s
}

func submitCommand(s State) (State, Effect) {
	line := s.Input.Text()

	cmd, err := command.Parse(line)
	if err != nil {
		return s.logf("Error: " + err.Error()), nil
	}

	s.History = s.History.Add(line)
	s.Input = Buffer{}
	s.Mode = Normal

	return execute(s, cmd)
}

func selectKey(s State, k Key) (State, Effect) {
	if s.Selection == nil || len(s.Selection.Candidates) == 0 {
		s.Mode = Normal
		s.Selection = nil

		return s, nil
	}

	sel := *s.Selection
	n := len(sel.Candidates)

	switch {
	case k.Code == KeyEsc:
		s.Mode = Normal
		s.Selection = nil

		return s, nil
	case k.Code == KeyEnter:
		return applySelection(s, sel)
	case k.isRune('j'), k.Code == KeyDown:
		sel.Index = (sel.Index + 1) % n
	case k.isRune('k'), k.Code == KeyUp:
		sel.Index = (sel.Index - 1 + n) % n
	case k.Code == KeyRune && !k.Ctrl && !k.Alt && k.Rune >= '1' && k.Rune <= '9':
		idx := int(k.Rune - '1')
		if idx >= n {
			return s, nil
		}

		sel.Index = idx

		return applySelection(s, sel)
	default:
		return s, nil
	}

	s.Selection = &sel

	return s, nil
}

func applySelection(s State, sel Selection) (State, Effect) {
	s.Mode = Normal
	s.Selection = nil

	choice := sel.Candidates[sel.Index]

	switch sel.Kind {
	case SelectServer:
		return connect(s, choice)
	case SelectToolInfo:
		return showTool(s, choice), nil
	case SelectToolRun:
		return runTool(s, choice, nil), nil
	default:
		return s, nil
	}
}
