package domain

// BlockType identifies the semantic role of a block in the document tree.
type BlockType string

const (
	// Structural leaf types produced by the line builder.
	BlockTypeLine BlockType = "Line"
	BlockTypeSpan BlockType = "Span"

	// Semantic block types.
	BlockTypeText            BlockType = "Text"
	BlockTypeTextInlineMath  BlockType = "TextInlineMath"
	BlockTypeSectionHeader   BlockType = "SectionHeader"
	BlockTypePageHeader      BlockType = "PageHeader"
	BlockTypePageFooter      BlockType = "PageFooter"
	BlockTypeBlockquote      BlockType = "Blockquote"
	BlockTypeCode            BlockType = "Code"
	BlockTypeEquation        BlockType = "Equation"
	BlockTypeFootnote        BlockType = "Footnote"
	BlockTypeListItem        BlockType = "ListItem"
	BlockTypeListGroup       BlockType = "ListGroup"
	BlockTypeTable           BlockType = "Table"
	BlockTypeTableCell       BlockType = "TableCell"
	BlockTypeForm            BlockType = "Form"
	BlockTypeFigure          BlockType = "Figure"
	BlockTypePicture         BlockType = "Picture"
	BlockTypeCaption         BlockType = "Caption"
	BlockTypeHandwriting     BlockType = "Handwriting"
	BlockTypeComplexRegion   BlockType = "ComplexRegion"
	BlockTypeTableOfContents BlockType = "TableOfContents"
	BlockTypeReference       BlockType = "Reference"
	BlockTypeUnknown         BlockType = "Unknown"
)

// AllBlockTypes is the closed enumeration of valid block types. Processors
// may retype a block but only to one of these values.
var AllBlockTypes = map[BlockType]bool{
	BlockTypeLine:            true,
	BlockTypeSpan:            true,
	BlockTypeText:            true,
	BlockTypeTextInlineMath:  true,
	BlockTypeSectionHeader:   true,
	BlockTypePageHeader:      true,
	BlockTypePageFooter:      true,
	BlockTypeBlockquote:      true,
	BlockTypeCode:            true,
	BlockTypeEquation:        true,
	BlockTypeFootnote:        true,
	BlockTypeListItem:        true,
	BlockTypeListGroup:       true,
	BlockTypeTable:           true,
	BlockTypeTableCell:       true,
	BlockTypeForm:            true,
	BlockTypeFigure:          true,
	BlockTypePicture:         true,
	BlockTypeCaption:         true,
	BlockTypeHandwriting:     true,
	BlockTypeComplexRegion:   true,
	BlockTypeTableOfContents: true,
	BlockTypeReference:       true,
	BlockTypeUnknown:         true,
}

// ValidBlockType reports whether t belongs to the closed enumeration.
func ValidBlockType(t BlockType) bool {
	return AllBlockTypes[t]
}
