// Package models defines the library entities exchanged with the back-office
// API (authors, books, students, transactions, dashboard aggregates and the
// logged-in user), together with their create inputs and partial updates.
//
// Every entity comes in three shapes:
//
//   - the record as returned by the server (Book);
//   - the create input, i.e. the record without its identifier (BookInput);
//   - the partial update, whose pointer fields mark what is being changed
//     (BookPatch). Only non-nil fields are sent.
//
// Inputs and patches are checked with Validate before they reach the network,
// and can be built from "name=value" pairs with ParseFields and Decode.
package models
