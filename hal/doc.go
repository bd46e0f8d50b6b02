// Package hal renders resources and collections in the HAL hypermedia format.
//
// Every representation carries a "_links.self.href". Collections embed their items
// under the plural of the resource name together with count and total.
package hal
