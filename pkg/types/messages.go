package types

// Client -> Server
// join:
//   room: string
//   name: string
//   admin: boolean // admin join resets the room's game state
//
// leave: {}
//
// update-configuration:
//   room: string
//   config: { drawTime, hints, rounds, wordCount, wordMode }
//
// word-selection: {} // sender must hold the current turn
//
// word-selected:
//   room: string
//   word: string
//
// word-guessed: {} // sender is the guesser; room comes from the index

// Server -> Client
// joined / left:
//   participant: Participant
//   members: Participant[]
//   gameState: GameState
//   currentTurn: Participant
//
// configuration-updated:
//   config: { drawTime, hints, rounds, wordCount, wordMode }
//
// word-selection:
//   currentTurn: Participant
//   words: string[] // wordCount candidates
//   members: Participant[]
//   gameState: GameState
//
// game-started:
//   word: string
//   currentTurn: Participant
//   gameState: GameState
//
// leader-board (scheduled, drawTime after game-started):
//   leaderBoard: Participant[] // score desc, ties by join order
//
// result (scheduled, 10s after leader-board, final round only):
//   leaderBoard: Participant[]
//
// word-guessed:
//   participant: Participant // with the updated score
//
// error:
//   error: string
