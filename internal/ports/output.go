package ports

import "pkgfilehash/internal/types"

type InventoryWriterPort interface {
	WriteInventory(path string, format types.OutputFormat, inventory types.Inventory) error
	WriteJSON(path string, value any) error
}
