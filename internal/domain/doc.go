// Package domain models the entities of the RHNR multi-criteria scoring
// process: fluviometric stations, hidro-referenced basin records, raw
// criterion values, classification scores, and the collaborator contracts the
// core consumes.
//
// # Basin codes
//
// Drainage topology is encoded in Pfafstetter-style basin codes (cobacia): a
// string of decimal digits where each digit subdivides the parent basin and an
// even digit marks a trunk reach. Within one drainage network, a larger code
// on the same course prefix is upstream of a smaller one. The pure code
// algebra lives in the basin package; domain carries the records.
//
// # Raw criterion values
//
// A calculator produces one RawValue per (station, criterion) pair. Values are
// numbers, booleans, or category strings; a Null value means the criterion
// could not be computed for that station (no discharge records, unknown
// drainage area) and scores as the zero-equivalent class instead of failing
// the run. Which failures degrade to Null and which abort is a deliberate
// per-calculator policy, documented on each calculator.
//
// # Stage and discharge conventions
//
// Stage (cota) arrives from the warehouse in centimeters; rating-curve
// coefficients are fitted in meters, so stage is divided by 100 before the
// power-law equation is applied. Discharge (vazao) is m³/s. Series rows carry
// a consistency level: 1 = raw, 2 = consistent; when both exist for a date the
// consistent row wins.
//
// # Error taxonomy
//
// Sentinel errors distinguish configuration/data faults (missing attributes,
// absent topology mapping) from table-consistency faults (ValidationError)
// and from internal invariant violations (ErrNoMatchingInterval). Consistency
// and invariant errors always abort a scoring run; data faults follow the
// per-calculator policy above.
package domain
