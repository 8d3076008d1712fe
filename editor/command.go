package editor

import (
	"fmt"

	"github.com/eringen/folio/document"
)

// Command is an editor operation as sent by a client, for example
// {"command":"toggleMark","mark":"bold"}.
type Command struct {
	Command string `json:"command"`

	Text  string        `json:"text,omitempty"`
	HTML  string        `json:"html,omitempty"`
	Mark  document.Mark `json:"mark,omitempty"`
	Block document.Type `json:"block,omitempty"`
	Level int           `json:"level,omitempty"`
	Emoji string        `json:"emoji,omitempty"`
	Delta int           `json:"delta,omitempty"`

	Rows  int  `json:"rows,omitempty"`
	Cols  int  `json:"cols,omitempty"`
	Below bool `json:"below,omitempty"`
	Right bool `json:"right,omitempty"`
	ToEnd bool `json:"toEnd,omitempty"`

	Selection *document.Range `json:"selection,omitempty"`
	Path      document.Path   `json:"path,omitempty"`
	Offset    int             `json:"offset,omitempty"`

	Media
}

// Exec dispatches c to the matching editor method.
func (e *Editor) Exec(c Command) error {
	switch c.Command {
	case "select":
		if c.Selection == nil {
			e.Deselect()
			return nil
		}
		return e.Select(*c.Selection)
	case "collapse":
		return e.Collapse(c.ToEnd)
	case "selectAll":
		e.SelectAll()
		return nil
	case "moveTo":
		return e.MoveTo(c.Path, c.Offset)
	case "deselect":
		e.Deselect()
		return nil

	case "insertText":
		return e.InsertText(c.Text)
	case "insertBreak":
		return e.InsertBreak()
	case "insertSoftBreak":
		return e.InsertSoftBreak()
	case "deleteBackward":
		return e.DeleteBackward()
	case "deleteForward":
		return e.DeleteForward()
	case "deleteFragment":
		return e.DeleteFragment()
	case "paste":
		return e.Paste(c.HTML, c.Text)

	case "toggleMark":
		return e.ToggleMark(c.Mark)
	case "addMark":
		return e.AddMark(c.Mark)
	case "removeMark":
		return e.RemoveMark(c.Mark)

	case "toggleBlock":
		if c.Block == document.Heading && c.Level > 0 {
			return e.SetHeading(c.Level)
		}
		return e.ToggleBlock(c.Block)
	case "setHeading":
		return e.SetHeading(c.Level)

	case "wrapLink":
		return e.WrapLink(c.URL)
	case "unwrapLink":
		return e.UnwrapLink()

	case "insertImage":
		return e.InsertImage(c.Media)
	case "insertVideo":
		return e.InsertVideo(c.Media)
	case "insertFile":
		return e.InsertFile(c.Media)
	case "insertEmbed":
		return e.InsertEmbed(c.Media)
	case "insertDivider":
		return e.InsertDivider()

	case "indentListItem":
		return e.IndentListItem()
	case "outdentListItem":
		return e.OutdentListItem()

	case "insertTable":
		return e.InsertTable(c.Rows, c.Cols)
	case "insertRow":
		return e.InsertRow(c.Below)
	case "insertColumn":
		return e.InsertColumn(c.Right)
	case "deleteRow":
		return e.DeleteRow()
	case "deleteColumn":
		return e.DeleteColumn()
	case "deleteTable":
		return e.DeleteTable()

	case "undo":
		e.Undo()
		return nil
	case "redo":
		e.Redo()
		return nil

	case "slashMove":
		return e.MoveSlash(c.Delta)
	case "slashAccept":
		return e.AcceptSlash(c.Media)
	case "slashDismiss":
		e.DismissSlash()
		return nil

	case "emojiMove":
		return e.MoveEmoji(c.Delta)
	case "emojiAccept":
		return e.AcceptEmoji()
	case "emojiDismiss":
		e.DismissEmoji()
		return nil
	case "insertEmoji":
		return e.InsertEmoji(c.Emoji)
	}
	return fmt.Errorf("%w: %q", ErrUnknownCommand, c.Command)
}
