// Package files inventories the data directory.
//
// Discovery reports, for each configured source, whether the file is present
// together with its size and modification time, and lists any other CSV
// files found alongside them.
//
// Example usage:
//
//	discovery := files.NewDiscovery(sources)
//	inventory, err := discovery.Inventory()
//	if err != nil {
//	    return err
//	}
//	latest, ok := files.GetLatestFile(inventory.Sources)
package files
