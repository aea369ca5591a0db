// Package services contains the application services of the gatekeeper
// console. ConsoleService ties the session store, the permission resolver
// and the route guard together behind the operations the CLI offers.
package services
