// Package integration contains the commerce synchronization bounded context.
// It describes the entities exchanged between the SOURCE catalog/order system
// and the TARGET storefront, and the ports the sync engine talks through.
//
// Key concepts:
//   - Metadata: the only SOURCE field the engine mutates (target id + last sync time)
//   - SourceProduct / SourceCustomer / SourceOrder: canonical SOURCE records
//   - TargetProduct / TargetCustomer / TargetOrder: TARGET create/update shapes
//   - SyncLogEntry: append-only outcome of one create/update/delete attempt
//   - Tenant / TenantConfiguration: per-tenant credentials for both platforms
//
// Design Pattern: Ports & Adapters
//   - Ports (SourceCatalog, TargetStore, repositories) are defined here
//   - Adapters (Genuka, WooCommerce, GORM) live in the infrastructure layer
package integration
