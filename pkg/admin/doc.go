// Package admin implements the vendor administrative commands of the token.
//
// Commands arrive as ISO 7816-4 command APDUs. A Router dispatches them on
// INS to a Handler; handlers that multiplex on P1 use a P1Table.
//
// Copyright (c) 2026 Northvolt AB and the tokenhal authors.
package admin
