// Package maintenance implements the rule-based maintenance scorers. Two
// policies coexist and are selected by name:
//
//   - interval: pessimistic max of mileage and calendar ratios against the
//     per-type service interval table.
//   - schedule: weighted blend of odometer reading and proximity of the
//     scheduled service date.
//
// Neither policy depends on learned model state.
package maintenance
