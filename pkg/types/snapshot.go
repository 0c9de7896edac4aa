package types

// StateSnapshot:
//   version: number
//   code: string
//   session:
//     roster: Participant[]
//     draft:
//       teams: { captain: Participant, members: Participant[] }[]
//       availablePool: Participant[]
//       activeTeamIndex: number
//     phase: "idle" | "spinning" | "pending" | "complete"
//     selected: number // index into availablePool while spinning or pending
//   wheel:
//     items: { label: string, color: string }[]
//     targetIndex: number
//     spinning: boolean
//   balance: { frontend, backend, mobile, fullstack }[] // per team, team order
//   turnOrder: string[] // captain names, active first
//   activeTeam: string // omitted once the draft is complete
//
// Participant:
//   name: string // unique within a draft
//   department: string
//   rawSkills: string
//   skillCategory: "frontend" | "backend" | "mobile" | "fullstack"
//   isCaptain: boolean
//   email: string
