package editor

// ModalKind names an insertion dialog.
type ModalKind string

const (
	ModalLink  ModalKind = "link"
	ModalImage ModalKind = "image"
	ModalVideo ModalKind = "video"
)

// Default attributes of links inserted through the link dialog.
const (
	DefaultLinkRel    = "nofollow noopener noreferrer"
	DefaultLinkTarget = "_blank"
)

// ToolbarButton is one control of the formatting toolbar. A button either
// dispatches Command (with Args) or, when Modal is set, opens that dialog.
type ToolbarButton struct {
	ID       string
	Icon     string
	Label    string
	Command  string
	Args     Args
	Modal    ModalKind
	IsActive func(d *Document) bool
}

// ToolbarGroup is a visually separated run of buttons.
type ToolbarGroup struct {
	Name    string
	Buttons []ToolbarButton
}

func markButton(id, icon, label string, m Mark) ToolbarButton {
	return ToolbarButton{
		ID: id, Icon: icon, Label: label, Command: id,
		IsActive: func(d *Document) bool { return d.IsMarkActive(m) },
	}
}

func blockButton(id, icon, label string, t BlockType, level int) ToolbarButton {
	return ToolbarButton{
		ID: id, Icon: icon, Label: label, Command: id,
		IsActive: func(d *Document) bool { return d.IsBlockActive(t, level) },
	}
}

func colorButton(id, label, color string) ToolbarButton {
	return ToolbarButton{
		ID: id, Icon: "palette", Label: label, Command: "color", Args: Args{"color": color},
		IsActive: func(d *Document) bool { return d.ActiveColor() == color },
	}
}

// DefaultToolbar returns the toolbar of the post editor, in display order.
func DefaultToolbar() []ToolbarGroup {
	return []ToolbarGroup{
		{Name: "format", Buttons: []ToolbarButton{
			markButton("bold", "bold", "Gras", MarkBold),
			markButton("italic", "italic", "Italique", MarkItalic),
			markButton("underline", "underline", "Souligné", MarkUnderline),
			markButton("code", "code", "Code", MarkCode),
		}},
		{Name: "blocks", Buttons: []ToolbarButton{
			blockButton("heading1", "heading-1", "Titre 1", BlockHeading, 1),
			blockButton("heading2", "heading-2", "Titre 2", BlockHeading, 2),
			blockButton("heading3", "heading-3", "Titre 3", BlockHeading, 3),
			blockButton("paragraph", "pilcrow", "Paragraphe", BlockParagraph, 0),
		}},
		{Name: "lists", Buttons: []ToolbarButton{
			blockButton("bulletList", "list", "Liste à puces", BlockBulletItem, 0),
			blockButton("orderedList", "list-ordered", "Liste numérotée", BlockOrderedItem, 0),
			blockButton("blockquote", "quote", "Citation", BlockQuote, 0),
			blockButton("codeBlock", "square-code", "Bloc de code", BlockCode, 0),
		}},
		{Name: "colors", Buttons: []ToolbarButton{
			colorButton("colorDefault", "Couleur par défaut", ""),
			colorButton("colorRed", "Rouge", "#e11d48"),
			colorButton("colorBlue", "Bleu", "#2563eb"),
			colorButton("colorGreen", "Vert", "#16a34a"),
		}},
		{Name: "insert", Buttons: []ToolbarButton{
			{ID: "link", Icon: "link", Label: "Lien", Modal: ModalLink,
				IsActive: (*Document).IsLinkActive},
			{ID: "unsetLink", Icon: "unlink", Label: "Retirer le lien", Command: "unsetLink"},
			{ID: "image", Icon: "image", Label: "Image", Modal: ModalImage},
			{ID: "video", Icon: "video", Label: "Vidéo", Modal: ModalVideo},
		}},
	}
}

// ButtonState is the rendered state of a toolbar button.
type ButtonState struct {
	ID     string    `json:"id"`
	Icon   string    `json:"icon"`
	Label  string    `json:"label"`
	Active bool      `json:"active"`
	Modal  ModalKind `json:"modal,omitempty"`
}

// GroupState is the rendered state of a toolbar group.
type GroupState struct {
	Name    string        `json:"name"`
	Buttons []ButtonState `json:"buttons"`
}

// toolbarState evaluates every button against d. A nil d yields all buttons
// inactive.
func toolbarState(groups []ToolbarGroup, d *Document) []GroupState {
	out := make([]GroupState, 0, len(groups))
	for _, g := range groups {
		gs := GroupState{Name: g.Name, Buttons: make([]ButtonState, 0, len(g.Buttons))}
		for _, b := range g.Buttons {
			bs := ButtonState{ID: b.ID, Icon: b.Icon, Label: b.Label, Modal: b.Modal}
			if d != nil && b.IsActive != nil {
				bs.Active = b.IsActive(d)
			}
			gs.Buttons = append(gs.Buttons, bs)
		}
		out = append(out, gs)
	}
	return out
}

func findButton(groups []ToolbarGroup, id string) (ToolbarButton, bool) {
	for _, g := range groups {
		for _, b := range g.Buttons {
			if b.ID == id {
				return b, true
			}
		}
	}
	return ToolbarButton{}, false
}
